package models

// Term is a glossary entry.
type Term struct {
	ID            int64  `json:"id"`
	Term          string `json:"term"`
	Definition    string `json:"definition"`
	ContributorID *int64 `json:"contributorId,omitempty"`
}

// Link types accepted for a term resource.
const (
	LinkTypeVideo = "video"
	LinkTypeWeb   = "web"
)

// Resource is an external link that explains a term.
type Resource struct {
	ID       int64  `json:"id"`
	TermID   int64  `json:"termid"`
	Link     string `json:"link"`
	LinkType string `json:"linktype"`
	Language string `json:"language"`
}
