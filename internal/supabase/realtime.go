package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

// RealtimeClient publishes presentation lifecycle events for the editing
// UI, which watches presentations outside of the generation stream.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Supabase Go client has no direct Realtime publish; row updates on
	// the presentations table trigger Realtime change events automatically,
	// so this stays a hook for explicit publication via the REST API.
	return nil
}

func (r *RealtimeClient) PublishPresentationEvent(presentationID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("presentation:%s", presentationID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func GenerationStartedPayload(presentationID uuid.UUID, totalSlides int, resuming bool) map[string]interface{} {
	return map[string]interface{}{
		"presentation_id": presentationID.String(),
		"status":          "generating",
		"total_slides":    totalSlides,
		"resuming":        resuming,
	}
}

func GenerationCompletedPayload(presentationID uuid.UUID, slideCount int) map[string]interface{} {
	return map[string]interface{}{
		"presentation_id": presentationID.String(),
		"status":          "completed",
		"progress":        100,
		"slide_count":     slideCount,
	}
}

func GenerationInterruptedPayload(presentationID uuid.UUID, status string, slideCount int, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"presentation_id": presentationID.String(),
		"status":          status,
		"slide_count":     slideCount,
		"error":           errorMsg,
	}
}
