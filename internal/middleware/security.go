// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security-related HTTP headers to every response.
// HSTS is only sent when production is true, since development runs over
// plain HTTP.
func SecureHeaders(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Prevent the browser from MIME-sniffing the Content-Type.
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent embedding in iframes from other origins (clickjacking).
			h.Set("X-Frame-Options", "SAMEORIGIN")

			// Disable the legacy XSS filter.
			h.Set("X-XSS-Protection", "0")

			// Control what information is sent in the Referer header.
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			h.Set("Permissions-Policy", "interest-cohort=()")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("X-DNS-Prefetch-Control", "off")

			if production {
				h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
