package extract

import "strings"

type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
)

// Input is what the upstream extractor receives: one uploaded document
// (base64 bytes) or a social-post caption.
type Input struct {
	ImageData string // base64-encoded image or PDF bytes
	MediaType string // e.g. "image/jpeg"; defaults by FileType when empty
	FileType  FileType
	Caption   string // social post text, used when no document is attached
}

// Source describes where a batch of candidates came from; it becomes the
// attribution string on every resulting place record.
type Source struct {
	Kind   string // "document" | "social"
	Handle string // e.g. "@weekendtrips" for social posts
}

// Attribution is always non-empty: unknown origins fall back to the generic
// document-upload label.
func (s Source) Attribution() string {
	switch s.Kind {
	case "social":
		h := strings.TrimSpace(s.Handle)
		if h == "" {
			return "Social post"
		}
		if !strings.HasPrefix(h, "@") {
			h = "@" + h
		}
		return "Instagram post by " + h
	default:
		return "Document upload"
	}
}

// Candidate is the raw, unvalidated shape the extractor proposes. It lives
// only for the duration of one extraction call.
type Candidate struct {
	Found    bool   `json:"found"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Category string `json:"category,omitempty"`
	Overview string `json:"overview,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}
