package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fathomdocs/ocr-service/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminStats returns the dashboard aggregate: per-status counts, last-hour
// volume, stuck jobs and recent average processing time.
func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	stuck := make([]gin.H, 0, len(stats.StuckJobs))
	for _, j := range stats.StuckJobs {
		stuck = append(stuck, gin.H{
			"id":        j.ID,
			"fileName":  j.FileName,
			"updatedAt": j.UpdatedAt.UTC().Format(time.RFC3339),
			"stuckFor":  int64(j.StuckFor.Seconds()),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"counts": gin.H{
			"PENDING":    stats.CountsByStatus[store.StatusPending],
			"PROCESSING": stats.CountsByStatus[store.StatusProcessing],
			"COMPLETED":  stats.CountsByStatus[store.StatusCompleted],
			"FAILED":     stats.CountsByStatus[store.StatusFailed],
		},
		"lastHour":            stats.LastHourCount,
		"stuckJobs":           stuck,
		"avgProcessingTimeMs": stats.AvgProcessingTimeMs,
	})
}

// AdminListJobs returns a newest-first page with derived per-job fields.
func (h *Handlers) AdminListJobs(c *gin.Context) {
	status := store.Status(c.Query("status"))
	if status != "" && !store.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := h.store.ListJobs(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		item := adminJobResponse(job)
		item["age"] = now.Sub(job.CreatedAt).Milliseconds()
		item["isStuck"] = job.Status == store.StatusProcessing && now.Sub(job.UpdatedAt) > store.StuckThreshold
		if job.ProcessedAt != nil {
			item["processingTime"] = job.ProcessedAt.Sub(job.CreatedAt).Milliseconds()
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":    items,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
		"hasMore": offset+len(jobs) < total,
	})
}

// AdminGetJob returns a single job with its file size, never its bytes.
func (h *Handlers) AdminGetJob(c *gin.Context) {
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

	c.JSON(http.StatusOK, adminJobResponse(job))
}

// AdminDeleteJob removes a job; PROCESSING rows require force=true.
func (h *Handlers) AdminDeleteJob(c *gin.Context) {
	id := c.Param("id")
	if !uuidRe.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	force := c.Query("force") == "true"
	err := h.store.DeleteJob(c.Request.Context(), id, force)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	case errors.Is(err, store.ErrJobProcessing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete a processing job without force=true"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Job deleted", "id": id})
	}
}

type patchJobRequest struct {
	Status       store.Status `json:"status"`
	ErrorMessage string       `json:"errorMessage"`
}

// AdminPatchJob supports two transitions: reset to PENDING (clears terminal
// fields) and mark FAILED with an explicit message.
func (h *Handlers) AdminPatchJob(c *gin.Context) {
	id := c.Param("id")
	if !uuidRe.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	var req patchJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var job *store.Job
	var err error
	switch req.Status {
	case store.StatusPending:
		job, err = h.store.ResetToPending(c.Request.Context(), id)
	case store.StatusFailed:
		if req.ErrorMessage == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "errorMessage is required for FAILED"})
			return
		}
		job, err = h.store.MarkFailed(c.Request.Context(), id, req.ErrorMessage)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job"})
		return
	}

	h.events.Publish(c.Request.Context(), job.ID, string(job.Status), req.ErrorMessage)
	c.JSON(http.StatusOK, gin.H{"job": adminJobResponse(job)})
}

func adminJobResponse(job *store.Job) gin.H {
	resp := jobResponse(job)
	resp["fileSizeBytes"] = job.FileSizeBytes
	return resp
}
