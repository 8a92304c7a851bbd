package mapview

// Diff is the set of operations that turns the previous markers into the
// next ones. Kept markers need no work on the client.
type Diff struct {
	Added   []Marker `json:"added"`
	Updated []Marker `json:"updated"`
	Removed []string `json:"removed"`
	Kept    []string `json:"kept"`
}

// Empty reports whether the client has nothing to do.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// DiffMarkers compares renders by marker ID. Order follows next for
// added/updated/kept and prev for removed.
func DiffMarkers(prev, next []Marker) Diff {
	d := Diff{
		Added:   []Marker{},
		Updated: []Marker{},
		Removed: []string{},
		Kept:    []string{},
	}

	old := make(map[string]Marker, len(prev))
	for _, m := range prev {
		old[m.ID] = m
	}

	present := make(map[string]struct{}, len(next))
	for _, m := range next {
		present[m.ID] = struct{}{}
		was, ok := old[m.ID]
		switch {
		case !ok:
			d.Added = append(d.Added, m)
		case was != m:
			d.Updated = append(d.Updated, m)
		default:
			d.Kept = append(d.Kept, m.ID)
		}
	}

	for _, m := range prev {
		if _, ok := present[m.ID]; !ok {
			d.Removed = append(d.Removed, m.ID)
			// Duplicate IDs in prev are reported once.
			present[m.ID] = struct{}{}
		}
	}
	return d
}
