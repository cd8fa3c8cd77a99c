package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Presentation struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	ProjectID           uuid.UUID
	StructureID         uuid.UUID
	Status              Status
	Slides              json.RawMessage
	GenerationProgress  int
	TotalExpectedSlides sql.NullInt64
	Customization       json.RawMessage
	BrandContext        json.RawMessage
	ErrorMessage        sql.NullString
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DecodeSlides unmarshals the persisted jsonb slide list. An empty or
// NULL column yields an empty slice, not an error.
func (p *Presentation) DecodeSlides() ([]Slide, error) {
	if len(p.Slides) == 0 {
		return []Slide{}, nil
	}
	var slides []Slide
	if err := json.Unmarshal(p.Slides, &slides); err != nil {
		return nil, err
	}
	return slides, nil
}

type Slide struct {
	SlideNumber      int        `json:"slide_number"`
	Title            string     `json:"title"`
	Section          string     `json:"section,omitempty"`
	Body             []string   `json:"body"`
	SpeakerNotes     string     `json:"speaker_notes,omitempty"`
	Layout           string     `json:"layout,omitempty"`
	ImagePrompt      string     `json:"image_prompt,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	ImageGeneratedAt *time.Time `json:"image_generated_at,omitempty"`
}

// SlideContent is the structured output of one text-generation call,
// before slide numbering and image merging.
type SlideContent struct {
	Title        string   `json:"title"`
	Body         []string `json:"body"`
	SpeakerNotes string   `json:"speaker_notes,omitempty"`
	Layout       string   `json:"layout,omitempty"`
	ImagePrompt  string   `json:"image_prompt,omitempty"`
}

// SlideSpec is the outline entry for one slide, prior to AI expansion.
type SlideSpec struct {
	SlideNumber int    `json:"slide_number"`
	Title       string `json:"title"`
	Section     string `json:"section,omitempty"`
	Description string `json:"description,omitempty"`
	WantsImage  bool   `json:"wants_image,omitempty"`
}

type DeckStructure struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ProjectID  uuid.UUID
	Title      string
	SlideSpecs json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (d *DeckStructure) DecodeSpecs() ([]SlideSpec, error) {
	if len(d.SlideSpecs) == 0 {
		return []SlideSpec{}, nil
	}
	var specs []SlideSpec
	if err := json.Unmarshal(d.SlideSpecs, &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// BrandContext carries optional business/brand information fed into prompts.
type BrandContext struct {
	BusinessName string `json:"business_name,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Audience     string `json:"audience,omitempty"`
	Tone         string `json:"tone,omitempty"`
	AccentColor  string `json:"accent_color,omitempty"`
}
