package dto

// DetectTermsRequest is the body of POST /api/v1/glossary/detect.
type DetectTermsRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnnotateRequest is the body of POST /api/v1/glossary/annotate.
type AnnotateRequest struct {
	Text string `json:"text" binding:"required"`
}

// DetectedTerm is one glossary hit inside a text.
type DetectedTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Category   string `json:"category,omitempty"`
}

// SegmentDTO is one piece of an annotated text. Kind is either "text" or
// "term"; Term, Definition and Category are set only for term segments.
type SegmentDTO struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Term       string `json:"term,omitempty"`
	Definition string `json:"definition,omitempty"`
	Category   string `json:"category,omitempty"`
}

// CreateTermRequest is the admin body for creating a glossary term.
type CreateTermRequest struct {
	Term       string `json:"term" binding:"required"`
	Definition string `json:"definition" binding:"required"`
	Category   string `json:"category"`
}

// UpdateTermRequest is the admin body for updating a glossary term.
type UpdateTermRequest struct {
	Term       *string `json:"term"`
	Definition *string `json:"definition"`
	Category   *string `json:"category"`
}
