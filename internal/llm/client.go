package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"funneldeck-backend/internal/models"
)

// ErrEmptyCompletion is returned when the model responds without any
// usable candidate. Callers classify it as terminal: re-asking the same
// question rarely changes the answer.
var ErrEmptyCompletion = errors.New("model returned no candidates")

// Client generates slide content with Gemini.
type Client struct {
	genaiClient *genai.Client
	modelName   string
	temperature float32
	maxTokens   int32
}

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		genaiClient: client,
		modelName:   modelName,
		temperature: 0.7,
		maxTokens:   2048,
	}, nil
}

// GenerateSlide expands one slide spec into full slide content. The
// response is requested as JSON and unmarshaled into models.SlideContent.
func (c *Client) GenerateSlide(ctx context.Context, spec models.SlideSpec, custom models.CustomizationOptions, brand models.BrandContext) (*models.SlideContent, error) {
	prompt := buildSlidePrompt(spec, custom, brand)

	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		MaxOutputTokens:  c.maxTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate slide content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	cleaned := cleanJSONBlock(text)
	var content models.SlideContent
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slide content: %w. Response: %s", err, cleaned)
	}
	if content.Title == "" {
		content.Title = spec.Title
	}
	if custom.ImageStyle == models.ImageStyleNone || !spec.WantsImage {
		content.ImagePrompt = ""
	}

	return &content, nil
}

func buildSlidePrompt(spec models.SlideSpec, custom models.CustomizationOptions, brand models.BrandContext) string {
	var sb strings.Builder

	sb.WriteString("You are a presentation copywriter for a marketing funnel builder. ")
	sb.WriteString("Write the content for a single slide of a sales presentation.\n\n")

	fmt.Fprintf(&sb, "Slide %d", spec.SlideNumber)
	if spec.Section != "" {
		fmt.Fprintf(&sb, " (section: %s)", spec.Section)
	}
	fmt.Fprintf(&sb, "\nTitle hint: %s\n", spec.Title)
	if spec.Description != "" {
		fmt.Fprintf(&sb, "Outline: %s\n", spec.Description)
	}

	sb.WriteString("\nStyle directives:\n")
	fmt.Fprintf(&sb, "- text density: %s\n", custom.TextDensity)
	fmt.Fprintf(&sb, "- visual style: %s\n", custom.VisualStyle)
	fmt.Fprintf(&sb, "- emphasis: %s\n", custom.Emphasis)

	if brand.BusinessName != "" {
		fmt.Fprintf(&sb, "\nBusiness: %s", brand.BusinessName)
		if brand.Industry != "" {
			fmt.Fprintf(&sb, " (%s)", brand.Industry)
		}
		sb.WriteString("\n")
	}
	if brand.Audience != "" {
		fmt.Fprintf(&sb, "Audience: %s\n", brand.Audience)
	}
	if brand.Tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", brand.Tone)
	}

	sb.WriteString("\nRespond with a single JSON object with these fields:\n")
	sb.WriteString(`{"title": string, "body": [string], "speaker_notes": string, "layout": string`)
	if spec.WantsImage && custom.ImageStyle != models.ImageStyleNone {
		fmt.Fprintf(&sb, `, "image_prompt": string describing a %s-style supporting image`, custom.ImageStyle)
	}
	sb.WriteString("}\n")

	return sb.String()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

// cleanJSONBlock strips markdown code fences the model sometimes wraps
// around JSON output despite the response MIME type.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
