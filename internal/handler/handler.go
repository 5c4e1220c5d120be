package handler

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/campus"
	"classtrack/internal/mediastore"
	"classtrack/internal/store"
)

// Handler exposes the campus service over the JSON API.
type Handler struct {
	svc   *campus.Service
	db    *store.DB
	media *mediastore.Client // nil when media storage is not configured
}

// New creates a handler.
func New(svc *campus.Service, db *store.DB, media *mediastore.Client) *Handler {
	return &Handler{svc: svc, db: db, media: media}
}

// Health reports process and database liveness.
func (h *Handler) Health(c *gin.Context) {
	database := "connected"
	if !h.db.Healthy(c.Request.Context()) {
		database = "disconnected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError maps the service error taxonomy onto HTTP statuses. Storage
// connectivity failures surface uniformly as 503 with a diagnostic detail.
func respondError(c *gin.Context, err error) {
	if campus.IsUnavailable(err) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable", "detail": err.Error()})
		return
	}
	status := http.StatusInternalServerError
	switch campus.KindOf(err) {
	case campus.KindValidation:
		status = http.StatusBadRequest
	case campus.KindNotFound:
		status = http.StatusNotFound
	case campus.KindConflict:
		status = http.StatusConflict
	case campus.KindAuth:
		status = http.StatusUnauthorized
	case campus.KindForbidden:
		status = http.StatusForbidden
	case campus.KindUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// idParam parses an integer path parameter; false means the response was
// already written.
func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) *int {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// Upload stores a face image or profile picture and returns its reference.
// Accepts a multipart file or a JSON body with a base64 data URL.
func (h *Handler) Upload(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	var result *mediastore.UploadResult
	var err error
	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
			return
		}
		result, err = h.media.UploadBytes(data, header.Filename)
	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = h.media.UploadBase64(body.Data)
	}
	if err != nil {
		log.Printf("media upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":       result.SecureURL,
		"public_id": result.PublicID,
		"width":     result.Width,
		"height":    result.Height,
		"bytes":     result.Bytes,
	})
}

// Notifications returns the synthesized feed.
func (h *Handler) Notifications(c *gin.Context) {
	feed, err := h.svc.ListNotifications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if feed == nil {
		feed = []campus.Notification{}
	}
	c.JSON(http.StatusOK, feed)
}
