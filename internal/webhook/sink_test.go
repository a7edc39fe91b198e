package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeliversPayload(t *testing.T) {
	var received Payload
	var userAgentHeader, contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgentHeader = r.Header.Get("User-Agent")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSink("http://localhost:3040")
	err := sink.Send(context.Background(), srv.URL, "job-1", "t@e.com", `{"text":"hi"}`)
	require.NoError(t, err)

	assert.Equal(t, "OCR-API/1.0", userAgentHeader)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "job-1", received.JobID)
	assert.Equal(t, "t@e.com", received.Email)
	assert.Equal(t, `{"text":"hi"}`, received.OCRResult)
	assert.Equal(t, "http://localhost:3040/job/job-1", received.StatusURL)

	_, err = time.Parse(time.RFC3339, received.Timestamp)
	assert.NoError(t, err, "timestamp must be RFC 3339")
}

func TestSendReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewSink("http://localhost:3040")
	err := sink.Send(context.Background(), srv.URL, "job-1", "t@e.com", "{}")
	assert.Error(t, err)
}

func TestSendReportsUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	sink := NewSink("http://localhost:3040")
	err := sink.Send(context.Background(), srv.URL, "job-1", "t@e.com", "{}")
	assert.Error(t, err)
}
