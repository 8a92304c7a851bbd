package domain

// Review is a user's rating of a place.
type Review struct {
	ID        string `json:"id"`
	PlaceURI  string `json:"placeUri"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"` // 1..5
	Comment   string `json:"comment"`
	CreatedAt int64  `json:"createdAt"` // epoch ms
}

// Report flags a listing as wrong, closed or abusive.
type Report struct {
	ID         string `json:"id"`
	PlaceURI   string `json:"placeUri"`
	PlaceTitle string `json:"placeTitle"`
	Reason     string `json:"reason"`
	Details    string `json:"details,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	Resolved   bool   `json:"resolved"`
}

// UsageInsights are platform-wide counters shown on the admin dashboard.
type UsageInsights struct {
	Searches       int64            `json:"searches"`
	PlaceViews     int64            `json:"placeViews"`
	CategoryClicks int64            `json:"categoryClicks"`
	Categories     map[string]int64 `json:"categories"`
}

// Category is a search shortcut.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon" yaml:"icon"`
}

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences bundles the per-user settings.
type Preferences struct {
	Language string `json:"language"`
	Theme    Theme  `json:"theme"`
}
