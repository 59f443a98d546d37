package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// GenerateRateLimitKey creates a unique key for rate limiting
func GenerateRateLimitKey(companyID uint, path string) string {
	return fmt.Sprintf("rl:%d:%s", companyID, path)
}

// LogEvent logs a domain event with structured context and leaves a
// sentry breadcrumb for error correlation
func LogEvent(eventType string, data map[string]interface{}) {
	logrus.WithFields(logrus.Fields(data)).Info(eventType)

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// ReportError sends an error to sentry with tagged context
func ReportError(err error, errorType string, context map[string]interface{}) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ErrorResponse writes a JSON error with consistent shape
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// SuccessResponse wraps data in the standard success envelope
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{"success": true, "data": data}
}

// ParseUint parses a string ID, returning 0 on failure
func ParseUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
