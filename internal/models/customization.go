package models

import "fmt"

// CustomizationOptions are the enum-constrained generation options carried
// by the stream request. The zero value of any field means "use default".
type CustomizationOptions struct {
	TextDensity    string `json:"text_density,omitempty"`
	VisualStyle    string `json:"visual_style,omitempty"`
	Emphasis       string `json:"emphasis,omitempty"`
	AnimationLevel string `json:"animation_level,omitempty"`
	ImageStyle     string `json:"image_style,omitempty"`
}

const (
	ImageStyleNone = "none"

	DefaultTextDensity    = "balanced"
	DefaultVisualStyle    = "clean"
	DefaultEmphasis       = "visuals"
	DefaultAnimationLevel = "subtle"
	DefaultImageStyle     = "photo"
)

var (
	textDensities   = []string{"minimal", "balanced", "detailed"}
	visualStyles    = []string{"clean", "bold", "playful", "corporate"}
	emphases        = []string{"visuals", "text", "data"}
	animationLevels = []string{"none", "subtle", "dynamic"}
	imageStyles     = []string{"photo", "illustration", "abstract", ImageStyleNone}
)

func (c *CustomizationOptions) Validate() error {
	if err := checkEnum("text_density", c.TextDensity, textDensities); err != nil {
		return err
	}
	if err := checkEnum("visual_style", c.VisualStyle, visualStyles); err != nil {
		return err
	}
	if err := checkEnum("emphasis", c.Emphasis, emphases); err != nil {
		return err
	}
	if err := checkEnum("animation_level", c.AnimationLevel, animationLevels); err != nil {
		return err
	}
	return checkEnum("image_style", c.ImageStyle, imageStyles)
}

// ApplyDefaults fills empty fields so downstream code never branches on "".
func (c *CustomizationOptions) ApplyDefaults() {
	if c.TextDensity == "" {
		c.TextDensity = DefaultTextDensity
	}
	if c.VisualStyle == "" {
		c.VisualStyle = DefaultVisualStyle
	}
	if c.Emphasis == "" {
		c.Emphasis = DefaultEmphasis
	}
	if c.AnimationLevel == "" {
		c.AnimationLevel = DefaultAnimationLevel
	}
	if c.ImageStyle == "" {
		c.ImageStyle = DefaultImageStyle
	}
}

func checkEnum(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %q (allowed: %v)", field, value, allowed)
}
