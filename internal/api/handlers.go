package api

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fathomdocs/ocr-service/internal/errors"
	"github.com/fathomdocs/ocr-service/internal/metrics"
	"github.com/fathomdocs/ocr-service/internal/store"
	"github.com/fathomdocs/ocr-service/internal/validate"
)

var (
	uuidRe  = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationDetail is one entry of a 400 response.
type ValidationDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func validationFailed(c *gin.Context, details []ValidationDetail) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"details": details,
	})
}

// Upload accepts a multipart upload, validates it and persists a PENDING
// job. The stored MIME is the detected type, never the claimed one.
func (h *Handlers) Upload(c *gin.Context) {
	var details []ValidationDetail

	documentType := c.PostForm("documentType")
	if documentType == "" {
		details = append(details, ValidationDetail{Path: "documentType", Message: "documentType is required"})
	}

	email := c.PostForm("email")
	switch {
	case email == "":
		details = append(details, ValidationDetail{Path: "email", Message: "email is required"})
	case !emailRe.MatchString(email):
		details = append(details, ValidationDetail{Path: "email", Message: "email is not a valid address"})
	}

	callbackWebhook := c.PostForm("callbackWebhook")
	if callbackWebhook != "" {
		if err := validate.WebhookURL(callbackWebhook); err != nil {
			details = append(details, ValidationDetail{Path: "callbackWebhook", Message: err.Error()})
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		details = append(details, ValidationDetail{Path: "file", Message: "file is required"})
		validationFailed(c, details)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	// One byte past the cap is enough to fail the size gate without
	// buffering an arbitrarily large body.
	data, err := io.ReadAll(io.LimitReader(file, validate.MaxFileBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	report, err := validate.File(data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			details = append(details, ValidationDetail{Path: "file", Message: verr.Message})
		} else {
			details = append(details, ValidationDetail{Path: "file", Message: err.Error()})
		}
	}
	if len(details) > 0 {
		validationFailed(c, details)
		return
	}

	job, err := h.store.CreateJob(c.Request.Context(), store.NewJob{
		DocumentType:    documentType,
		Email:           email,
		CallbackWebhook: callbackWebhook,
		FileData:        report.Sanitized,
		FileName:        fileHeader.Filename,
		MimeType:        report.DetectedMime,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
		return
	}

	metrics.UploadsTotal.Inc()
	h.events.Publish(c.Request.Context(), job.ID, string(store.StatusPending), "")

	c.JSON(http.StatusCreated, gin.H{
		"id":      job.ID,
		"status":  string(store.StatusPending),
		"message": "File uploaded successfully and queued for processing",
	})
}

// Status returns a job for polling clients.
func (h *Handlers) Status(c *gin.Context) {
	id := c.Param("id")
	if !uuidRe.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	job, err := h.store.GetJob(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job"})
		return
	}

	c.JSON(http.StatusOK, jobResponse(job))
}

// Health reports store connectivity.
func (h *Handlers) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// jobResponse is the public job view: timestamps in RFC 3339, optional
// fields omitted while null, file bytes never included.
func jobResponse(job *store.Job) gin.H {
	resp := gin.H{
		"id":           job.ID,
		"status":       string(job.Status),
		"documentType": job.DocumentType,
		"email":        job.Email,
		"fileName":     job.FileName,
		"mimeType":     job.MimeType,
		"createdAt":    job.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":    job.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if job.OCRResult != nil {
		resp["ocrResult"] = *job.OCRResult
	}
	if job.ErrorMessage != nil {
		resp["errorMessage"] = *job.ErrorMessage
	}
	if job.ProcessedAt != nil {
		resp["processedAt"] = job.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
