package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/adsmith-studio/adsmith-backend/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini generates content through the Google Gemini API.
type Gemini struct {
	client       *genai.Client
	captionModel string
	imageModel   string
}

// NewGemini constructs a Gemini generator from the service config.
func NewGemini(ctx context.Context, cfg config.GenAIConfig) (*Gemini, error) {
	client, errClient := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if errClient != nil {
		return nil, fmt.Errorf("generation: create gemini client: %w", errClient)
	}
	return &Gemini{
		client:       client,
		captionModel: cfg.CaptionModel,
		imageModel:   cfg.ImageModel,
	}, nil
}

// Caption generates an ad caption.
func (g *Gemini) Caption(ctx context.Context, req CaptionRequest) (string, error) {
	model := g.client.GenerativeModel(g.captionModel)
	model.SetTemperature(0.8)
	model.SetMaxOutputTokens(512)

	resp, errGen := model.GenerateContent(ctx, genai.Text(captionPrompt(req)))
	if errGen != nil {
		return "", fmt.Errorf("generation: caption: %w", errGen)
	}
	text := collectText(resp)
	if text == "" {
		return "", fmt.Errorf("generation: caption: empty response")
	}
	return text, nil
}

// AdImage generates an ad image.
func (g *Gemini) AdImage(ctx context.Context, req AdImageRequest) (*Image, error) {
	model := g.client.GenerativeModel(g.imageModel)

	resp, errGen := model.GenerateContent(ctx, genai.Text(adImagePrompt(req)))
	if errGen != nil {
		return nil, fmt.Errorf("generation: ad image: %w", errGen)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return &Image{MIMEType: blob.MIMEType, Data: blob.Data}, nil
			}
		}
	}
	return nil, fmt.Errorf("generation: ad image: no image in response")
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
