package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"funneldeck-backend/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    models.Status
		to      models.Status
		allowed bool
	}{
		{models.StatusGenerating, models.StatusCompleted, true},
		{models.StatusGenerating, models.StatusDraft, true},
		{models.StatusGenerating, models.StatusFailed, true},
		{models.StatusDraft, models.StatusGenerating, true},
		{models.StatusFailed, models.StatusGenerating, true},
		// completed is terminal
		{models.StatusCompleted, models.StatusGenerating, false},
		{models.StatusCompleted, models.StatusDraft, false},
		{models.StatusCompleted, models.StatusFailed, false},
		{models.StatusDraft, models.StatusCompleted, false},
		{models.StatusFailed, models.StatusDraft, false},
		{models.StatusGenerating, models.StatusGenerating, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, models.CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestAllowedPriorStatuses(t *testing.T) {
	assert.Equal(t, []models.Status{models.StatusGenerating},
		models.AllowedPriorStatuses(models.StatusCompleted))
	assert.ElementsMatch(t, []models.Status{models.StatusDraft, models.StatusFailed},
		models.AllowedPriorStatuses(models.StatusGenerating))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, models.StatusGenerating.Valid())
	assert.True(t, models.StatusDraft.Valid())
	assert.False(t, models.Status("archived").Valid())
	assert.False(t, models.Status("").Valid())
}

func TestErrInvalidTransition_Message(t *testing.T) {
	err := &models.ErrInvalidTransition{From: models.StatusCompleted, To: models.StatusGenerating}
	assert.Equal(t, "invalid status transition completed -> generating", err.Error())
}
