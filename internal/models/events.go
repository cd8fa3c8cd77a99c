package models

// SSE event types emitted on the generation stream. A conforming client
// treats comment frames (heartbeats) as noise.
const (
	EventConnected      = "connected"
	EventSlideGenerated = "slide_generated"
	EventProgress       = "progress"
	EventCompleted      = "completed"
	EventError          = "error"
)

// Machine-readable reasons carried by the terminal error event so clients
// can distinguish a timeout (offer resume) from a hard failure.
const (
	ReasonDeadlineExceeded = "deadline_exceeded"
	ReasonGenerationFailed = "generation_failed"
)

type ConnectedEvent struct {
	PresentationID string `json:"presentation_id"`
	TotalSlides    int    `json:"total_slides"`
	Resuming       bool   `json:"resuming"`
	StartSlide     int    `json:"start_slide"`
}

type SlideGeneratedEvent struct {
	Slide    Slide `json:"slide"`
	Progress int   `json:"progress"`
}

type ProgressEvent struct {
	Progress        int `json:"progress"`
	SlidesGenerated int `json:"slides_generated"`
}

type CompletedEvent struct {
	PresentationID string `json:"presentation_id"`
	TotalSlides    int    `json:"total_slides"`
	Progress       int    `json:"progress"`
}

type ErrorEvent struct {
	Reason          string `json:"reason"`
	Message         string `json:"message"`
	SlidesGenerated int    `json:"slides_generated"`
	Resumable       bool   `json:"resumable"`
}
