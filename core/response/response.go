package response

import (
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ValidationError collects per-field problems with a request body.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a problem for field. The first message per field is kept.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Require adds "is required" when value is blank.
func (e *ValidationError) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}

// OrNil returns e when at least one field failed, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// OK writes a success envelope merged with extra.
func OK(c *fiber.Ctx, extra fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

// Fail writes {success:false, error} with the given status.
func Fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// Error maps err to its envelope: validation problems are 400 with the field map,
// anything else is treated as a storage failure.
func Error(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   verr.Error(),
			"fields":  verr.Fields,
		})
	}
	return Fail(c, fiber.StatusInternalServerError, err)
}

// BadBody is returned when the request body cannot be decoded.
func BadBody(c *fiber.Ctx, err error) error {
	verr := NewValidationError()
	verr.Add("body", "invalid JSON: "+err.Error())
	return Error(c, verr)
}
