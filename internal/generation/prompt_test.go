package generation

import (
	"context"
	"strings"
	"testing"
)

func TestCaptionPrompt(t *testing.T) {
	prompt := captionPrompt(CaptionRequest{
		Product:     "Trail Runner X",
		Description: "lightweight trail running shoe",
		Platform:    "instagram",
		Tone:        "playful",
	})
	for _, want := range []string{"instagram", "Trail Runner X", "lightweight trail running shoe", "playful", "hashtags"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestCaptionPrompt_UnknownPlatformFallsBack(t *testing.T) {
	prompt := captionPrompt(CaptionRequest{Product: "Widget", Platform: "myspace"})
	if strings.Contains(prompt, "myspace") {
		t.Fatalf("unrecognised platform should not reach the prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "social media") {
		t.Fatalf("expected generic platform wording:\n%s", prompt)
	}
}

func TestAdImagePrompt_OmitsEmptyFields(t *testing.T) {
	prompt := adImagePrompt(AdImageRequest{Product: "Widget", Platform: "facebook"})
	if strings.Contains(prompt, "Visual style") {
		t.Fatalf("empty style should be omitted:\n%s", prompt)
	}
	if !strings.Contains(prompt, "facebook") {
		t.Fatalf("prompt missing platform:\n%s", prompt)
	}
}

func TestDisabledGenerator(t *testing.T) {
	var gen Generator = Disabled{}
	if _, errCaption := gen.Caption(context.Background(), CaptionRequest{Product: "Widget"}); errCaption == nil {
		t.Fatal("expected caption to fail without a backend")
	}
	if _, errImage := gen.AdImage(context.Background(), AdImageRequest{Product: "Widget"}); errImage == nil {
		t.Fatal("expected ad image to fail without a backend")
	}
}
