package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/draftstore"
)

// DraftFrontHandler serves the per-user draft storage endpoints.
type DraftFrontHandler struct {
	drafts draftstore.Store
}

// NewDraftFrontHandler constructs a DraftFrontHandler.
func NewDraftFrontHandler(drafts draftstore.Store) *DraftFrontHandler {
	return &DraftFrontHandler{drafts: drafts}
}

// validDraftKey reports whether key is a well-formed draft key such as
// "instagram_ad_caption".
func validDraftKey(key string) bool {
	for _, platform := range []string{draftstore.PlatformInstagram, draftstore.PlatformFacebook} {
		prefix := platform + "_ad_"
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return true
		}
	}
	return false
}

// Get returns a stored draft value.
func (h *DraftFrontHandler) Get(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	key := c.Param("key")
	if !validDraftKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft key"})
		return
	}

	value, ok := h.drafts.Get(c.Request.Context(), userID, key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// putDraftRequest defines the request body for storing a draft.
type putDraftRequest struct {
	Value string `json:"value"`
}

// Put stores a draft value. Storage is best effort: under memory
// pressure the store may drop heavy drafts to make room.
func (h *DraftFrontHandler) Put(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	key := c.Param("key")
	if !validDraftKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft key"})
		return
	}

	var body putDraftRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	h.drafts.Set(c.Request.Context(), userID, key, body.Value)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a draft.
func (h *DraftFrontHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	key := c.Param("key")
	if !validDraftKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft key"})
		return
	}

	h.drafts.Remove(c.Request.Context(), userID, key)
	c.Status(http.StatusNoContent)
}
