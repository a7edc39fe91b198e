/**
 * Webhook delivery.
 *
 * Completion callbacks are fire-and-forget: delivery failures are logged and
 * never reflected in job state.
 */

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	userAgent      = "OCR-API/1.0"
	requestTimeout = 30 * time.Second
)

// Payload is the body POSTed to the callback URL.
type Payload struct {
	JobID     string `json:"jobId"`
	Email     string `json:"email"`
	OCRResult string `json:"ocrResult"`
	StatusURL string `json:"statusUrl"`
	Timestamp string `json:"timestamp"`
}

// Sink delivers completion callbacks.
type Sink struct {
	appDomain string
	client    *http.Client
}

// NewSink creates a sink whose statusUrl values are rooted at appDomain.
func NewSink(appDomain string) *Sink {
	return &Sink{
		appDomain: appDomain,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

// Send POSTs the completion payload for jobID to url. Errors are logged and
// swallowed; the returned error exists for tests only and callers on the
// worker path ignore it.
func (s *Sink) Send(ctx context.Context, url, jobID, email, ocrResult string) error {
	payload := Payload{
		JobID:     jobID,
		Email:     email,
		OCRResult: ocrResult,
		StatusURL: s.appDomain + "/job/" + jobID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Job %s] Webhook payload marshal failed: %v", jobID, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[Job %s] Webhook request build failed: %v", jobID, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Job %s] Webhook delivery to %s failed: %v", jobID, url, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("webhook returned status %d", resp.StatusCode)
		log.Printf("[Job %s] Webhook delivery to %s failed: %v", jobID, url, err)
		return err
	}

	log.Printf("[Job %s] Webhook delivered to %s", jobID, url)
	return nil
}
