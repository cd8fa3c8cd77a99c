package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"funneldeck-backend/internal/models"
)

func TestStreamRequest_Resuming(t *testing.T) {
	r := models.StreamRequest{PresentationID: "abc", StartSlide: 4}
	assert.True(t, r.Resuming())

	// start_slide of zero means a fresh job, even with an id present
	r = models.StreamRequest{PresentationID: "abc", StartSlide: 0}
	assert.False(t, r.Resuming())

	r = models.StreamRequest{StartSlide: 4}
	assert.False(t, r.Resuming())

	r = models.StreamRequest{}
	assert.False(t, r.Resuming())
}
