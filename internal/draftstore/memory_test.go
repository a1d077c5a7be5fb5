package draftstore

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryStore_SetGetRemove(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	key := Key(PlatformInstagram, "prompt")
	store.Set(ctx, 1, key, "summer sale for a coffee brand")

	value, ok := store.Get(ctx, 1, key)
	if !ok || value != "summer sale for a coffee brand" {
		t.Fatalf("get = (%q, %v)", value, ok)
	}

	// drafts are namespaced per user
	if _, ok := store.Get(ctx, 2, key); ok {
		t.Fatalf("expected miss for another user")
	}

	store.Remove(ctx, 1, key)
	if _, ok := store.Get(ctx, 1, key); ok {
		t.Fatalf("expected miss after remove")
	}
	// removing again is harmless
	store.Remove(ctx, 1, key)
}

func TestMemoryStore_EvictsHeavyKeysAndRetries(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	heavy := Key(PlatformInstagram, "generated")
	store.Set(ctx, 1, heavy, strings.Repeat("x", 60))
	if _, ok := store.Get(ctx, 1, heavy); !ok {
		t.Fatalf("expected heavy draft stored")
	}

	// does not fit next to the heavy draft; eviction must free room
	incoming := Key(PlatformFacebook, "prompt")
	store.Set(ctx, 1, incoming, strings.Repeat("y", 60))

	if _, ok := store.Get(ctx, 1, heavy); ok {
		t.Fatalf("expected heavy draft evicted")
	}
	value, ok := store.Get(ctx, 1, incoming)
	if !ok || value != strings.Repeat("y", 60) {
		t.Fatalf("expected incoming draft stored after eviction, got (%q, %v)", value, ok)
	}
}

func TestMemoryStore_OversizedWriteDroppedSilently(t *testing.T) {
	store := NewMemoryStore(50)
	ctx := context.Background()

	key := Key(PlatformInstagram, "uploadedImage")
	store.Set(ctx, 1, key, strings.Repeat("z", 500))

	if _, ok := store.Get(ctx, 1, key); ok {
		t.Fatalf("expected oversized draft dropped")
	}
}

func TestMemoryStore_NonHeavyDraftsSurviveEviction(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	small := Key(PlatformInstagram, "prompt")
	store.Set(ctx, 1, small, "short prompt")

	heavy := Key(PlatformFacebook, "video")
	store.Set(ctx, 1, heavy, strings.Repeat("v", 40))

	// force eviction
	store.Set(ctx, 1, Key(PlatformInstagram, "generated"), strings.Repeat("g", 60))

	if _, ok := store.Get(ctx, 1, small); !ok {
		t.Fatalf("expected non-heavy draft to survive eviction")
	}
}

func TestHeavyKeys_CoverBothPlatforms(t *testing.T) {
	keys := HeavyKeys()
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		seen[key] = true
	}
	for _, want := range []string{"instagram_ad_generated", "facebook_ad_caption", "instagram_ad_video"} {
		if !seen[want] {
			t.Fatalf("heavy key set missing %s", want)
		}
	}
}
