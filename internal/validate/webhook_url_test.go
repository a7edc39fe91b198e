package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"public https", "https://example.com/hook", false},
		{"public http", "http://hooks.example.org/cb?x=1", false},
		{"bad scheme", "ftp://example.com/hook", true},
		{"not a url", "://nope", true},
		{"localhost", "http://localhost/hook", true},
		{"loopback v4", "http://127.0.0.1:8080/hook", true},
		{"all zeroes", "http://0.0.0.0/hook", true},
		{"loopback v6", "http://[::1]/hook", true},
		{"rfc1918 10/8", "http://10.1.2.3/hook", true},
		{"rfc1918 172.16/12", "http://172.20.0.1/hook", true},
		{"rfc1918 192.168/16", "http://192.168.1.1/hook", true},
		{"link local", "http://169.254.169.254/latest/meta-data", true},
		// Only 127.0.0.1 is blocked, not the whole loopback block. The
		// policy is literal-host based and this behavior is pinned.
		{"loopback neighbor passes", "http://127.0.0.2/hook", false},
		// No DNS resolution: a name that would resolve to loopback passes.
		{"unresolved hostname passes", "http://localtest.me/hook", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WebhookURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err, tt.url)
			} else {
				assert.NoError(t, err, tt.url)
			}
		})
	}
}
