// Package draftstore persists in-progress creative work (uploaded
// images, prompts, generated captions) on a best-effort basis. It is
// never the system of record: authoritative state lives in the
// database, and a lost draft must never affect ledger or subscription
// state.
package draftstore

import "context"

// Supported platforms for the draft key namespace.
const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
)

// Key builds a namespaced draft key, e.g. "instagram_ad_caption".
func Key(platform, field string) string {
	return platform + "_ad_" + field
}

// heavyFields name the bulky draft slots (images, edits, videos,
// captions) evicted first when storage runs out of room.
var heavyFields = []string{"generated", "uploadedImage", "editedImage", "video", "caption"}

// HeavyKeys returns the predefined eviction set across both platforms.
func HeavyKeys() []string {
	platforms := []string{PlatformInstagram, PlatformFacebook}
	keys := make([]string, 0, len(platforms)*len(heavyFields))
	for _, platform := range platforms {
		for _, field := range heavyFields {
			keys = append(keys, Key(platform, field))
		}
	}
	return keys
}

// Store is a best-effort per-user draft store. Set drops the write after
// an eviction retry fails, Get reports absence, and Remove swallows
// failures. No method returns an error.
type Store interface {
	Set(ctx context.Context, userID uint64, key, value string)
	Get(ctx context.Context, userID uint64, key string) (string, bool)
	Remove(ctx context.Context, userID uint64, key string)
}
