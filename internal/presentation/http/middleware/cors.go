package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopbill/shopbill-api/internal/config"
)

// CORSMiddleware builds the CORS policy for browser POS clients. They
// must be able to send the checkout Idempotency-Key header, and to read
// Content-Disposition so backup, report and invoice downloads keep
// their filenames.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
		}
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}

	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"Origin",
			"X-Request-ID",
		}
	}
	headers = ensureHeader(headers, IdempotencyKeyHeader)

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: methods,
		AllowHeaders: headers,
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Content-Disposition",
			"X-Request-ID",
			ReplayedHeader,
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// ensureHeader appends name unless the list already carries it. Header
// names compare case-insensitively.
func ensureHeader(headers []string, name string) []string {
	for _, h := range headers {
		if strings.EqualFold(h, name) {
			return headers
		}
	}
	return append(headers, name)
}
