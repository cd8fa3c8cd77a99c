package models

type CreateStructureRequest struct {
	ProjectID string      `json:"project_id" binding:"required"`
	Title     string      `json:"title" binding:"required"`
	Slides    []SlideSpec `json:"slides" binding:"required"`
}

// StreamRequest is the parsed query-string of the generation stream
// endpoint. StartSlide of zero means "not resuming", never "slide zero".
type StreamRequest struct {
	ProjectID      string
	StructureID    string
	Customization  CustomizationOptions
	Brand          BrandContext
	PresentationID string
	StartSlide     int
}

// Resuming reports whether the request is a well-formed resume: a resume
// id together with a positive 1-indexed start slide. A resume id without
// a positive start slide is treated as a fresh job.
func (r *StreamRequest) Resuming() bool {
	return r.PresentationID != "" && r.StartSlide >= 1
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
