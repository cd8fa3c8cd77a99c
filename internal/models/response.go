package models

import "time"

type PresentationResponse struct {
	ID                  string                `json:"presentation_id"`
	ProjectID           string                `json:"project_id"`
	StructureID         string                `json:"structure_id"`
	Status              string                `json:"status"`
	GenerationProgress  int                   `json:"generation_progress"`
	TotalExpectedSlides int                   `json:"total_expected_slides,omitempty"`
	Slides              []Slide               `json:"slides"`
	Customization       *CustomizationOptions `json:"customization,omitempty"`
	ErrorMessage        string                `json:"error_message,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

type PresentationListResponse struct {
	Presentations []PresentationSummary `json:"presentations"`
}

type PresentationSummary struct {
	ID                 string    `json:"presentation_id"`
	ProjectID          string    `json:"project_id"`
	Status             string    `json:"status"`
	GenerationProgress int       `json:"generation_progress"`
	SlideCount         int       `json:"slide_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type StatusResponse struct {
	PresentationID     string    `json:"presentation_id"`
	Status             string    `json:"status"`
	GenerationProgress int       `json:"generation_progress"`
	SlideCount         int       `json:"slide_count"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type StructureResponse struct {
	ID        string      `json:"structure_id"`
	ProjectID string      `json:"project_id"`
	Title     string      `json:"title"`
	Slides    []SlideSpec `json:"slides"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
