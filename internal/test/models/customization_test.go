package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"funneldeck-backend/internal/models"
)

func TestCustomizationOptions_Validate(t *testing.T) {
	valid := models.CustomizationOptions{
		TextDensity: "minimal",
		VisualStyle: "bold",
		ImageStyle:  "illustration",
	}
	assert.NoError(t, valid.Validate())

	// Empty fields mean "use default" and are always valid.
	empty := models.CustomizationOptions{}
	assert.NoError(t, empty.Validate())

	invalid := models.CustomizationOptions{TextDensity: "verbose"}
	err := invalid.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "text_density")

	invalidStyle := models.CustomizationOptions{ImageStyle: "watercolor"}
	assert.Error(t, invalidStyle.Validate())
}

func TestCustomizationOptions_ApplyDefaults(t *testing.T) {
	c := models.CustomizationOptions{VisualStyle: "corporate"}
	c.ApplyDefaults()

	assert.Equal(t, models.DefaultTextDensity, c.TextDensity)
	assert.Equal(t, "corporate", c.VisualStyle)
	assert.Equal(t, models.DefaultEmphasis, c.Emphasis)
	assert.Equal(t, models.DefaultAnimationLevel, c.AnimationLevel)
	assert.Equal(t, models.DefaultImageStyle, c.ImageStyle)
}

func TestCustomizationOptions_NoneDisablesImages(t *testing.T) {
	c := models.CustomizationOptions{ImageStyle: models.ImageStyleNone}
	assert.NoError(t, c.Validate())

	c.ApplyDefaults()
	assert.Equal(t, models.ImageStyleNone, c.ImageStyle)
}
