// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"inkwell/internal/respond"
)

// RateLimitMessage is the envelope text of a 429 response.
const RateLimitMessage = "Too many requests, please try again later."

// RateLimit allows limit requests per client IP within a sliding window.
// Each call creates an independent counter, so route groups can carry
// different budgets. Forwarding headers pick the client only when trustProxy
// is set; otherwise the key is the connection's peer address.
func RateLimit(limit int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	key := httprate.KeyByIP
	if trustProxy {
		key = func(r *http.Request) (string, error) {
			return clientIP(r), nil
		}
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respond.Message(w, http.StatusTooManyRequests, RateLimitMessage)
		}),
	)
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first (leftmost) IP, the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
