package generation

import (
	"fmt"
	"strings"
)

func captionPrompt(req CaptionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short %s ad caption for the product %q.\n", platformOrDefault(req.Platform), req.Product)
	if desc := strings.TrimSpace(req.Description); desc != "" {
		fmt.Fprintf(&b, "Product description: %s\n", desc)
	}
	if tone := strings.TrimSpace(req.Tone); tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", tone)
	}
	b.WriteString("Include 3-5 relevant hashtags. Return the caption text only, no markdown, no quotes.")
	return b.String()
}

func adImagePrompt(req AdImageRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a single square advertising image for %s promoting the product %q.\n", platformOrDefault(req.Platform), req.Product)
	if desc := strings.TrimSpace(req.Description); desc != "" {
		fmt.Fprintf(&b, "Product description: %s\n", desc)
	}
	if style := strings.TrimSpace(req.Style); style != "" {
		fmt.Fprintf(&b, "Visual style: %s\n", style)
	}
	b.WriteString("The image must not contain any text overlay.")
	return b.String()
}

func platformOrDefault(platform string) string {
	platform = strings.TrimSpace(strings.ToLower(platform))
	switch platform {
	case "instagram", "facebook":
		return platform
	default:
		return "social media"
	}
}
