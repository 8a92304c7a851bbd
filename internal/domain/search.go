package domain

// SearchResponse is what the reconciliation pipeline hands back. It is
// always well-formed: on backend failure Text is an apology, Places is
// empty and Error carries the detail.
type SearchResponse struct {
	Text   string        `json:"text"`
	Places []PlaceResult `json:"places"`
	Error  string        `json:"error,omitempty"`
}

// SourceRef is one side of a grounding chunk.
type SourceRef struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// GroundingChunk is a reference the model cited while answering.
type GroundingChunk struct {
	Maps *SourceRef `json:"maps,omitempty"`
	Web  *SourceRef `json:"web,omitempty"`
}

// Weather is a short current-conditions summary for the user's area.
type Weather struct {
	Temp         string `json:"temp"`
	Condition    string `json:"condition"`
	Emoji        string `json:"emoji"`
	LocationName string `json:"locationName"`
}
