// Package generation produces marketing captions and ad images through
// a pluggable Generator, backed by Google Gemini in production.
package generation

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no generation backend is configured.
var ErrUnavailable = errors.New("generation: no backend configured")

// CaptionRequest describes a caption generation call.
type CaptionRequest struct {
	Product     string `json:"product"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
	Tone        string `json:"tone"`
}

// AdImageRequest describes an ad image generation call.
type AdImageRequest struct {
	Product     string `json:"product"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
	Style       string `json:"style"`
}

// Image is a generated image payload.
type Image struct {
	MIMEType string
	Data     []byte
}

// Generator produces marketing content.
type Generator interface {
	Caption(ctx context.Context, req CaptionRequest) (string, error)
	AdImage(ctx context.Context, req AdImageRequest) (*Image, error)
}

// Disabled is a Generator that rejects every call. It stands in when no
// API key is configured so the rest of the service still boots.
type Disabled struct{}

// Caption implements Generator.
func (Disabled) Caption(context.Context, CaptionRequest) (string, error) {
	return "", ErrUnavailable
}

// AdImage implements Generator.
func (Disabled) AdImage(context.Context, AdImageRequest) (*Image, error) {
	return nil, ErrUnavailable
}
