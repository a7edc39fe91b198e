package validate

import (
	"net"
	"net/url"
	"strings"

	apperrors "github.com/fathomdocs/ocr-service/internal/errors"
)

// privateRanges are the CIDR blocks rejected for callback webhooks.
var privateRanges = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}()

// blockedHosts are literal hostnames rejected outright. Only the literal
// 127.0.0.1 is blocked, not the whole loopback block; no DNS resolution is
// performed. This is a best-effort SSRF gate at the literal-IP level.
var blockedHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
}

// WebhookURL checks a callback URL before it is persisted: http/https only,
// and the hostname must not be a local or private-network literal.
func WebhookURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return apperrors.NewValidationError(apperrors.ErrorUnsupportedType,
			"Invalid webhook URL: %v", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewValidationError(apperrors.ErrorUnsupportedType,
			"Webhook URL must use http or https, got %q", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return apperrors.NewValidationError(apperrors.ErrorUnsupportedType,
			"Webhook URL has no hostname")
	}

	if blockedHosts[host] {
		return apperrors.NewValidationError(apperrors.ErrorUnsupportedType,
			"Webhook URL points to a local address: %s", host)
	}

	if ip := net.ParseIP(host); ip != nil {
		for _, block := range privateRanges {
			if block.Contains(ip) {
				return apperrors.NewValidationError(apperrors.ErrorUnsupportedType,
					"Webhook URL points to a private network address: %s", host)
			}
		}
	}

	return nil
}
