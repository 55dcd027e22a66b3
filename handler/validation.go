package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ncobase/ncore/net/resp"
)

// FieldError describes one request-body field that failed validation, so a
// client can render per-field errors.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// bindJSON binds the request body and, on failure, answers 400 with a
// structured field-error list before any service is invoked. Returns false
// when the request was rejected.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: fieldMessage(fe),
			})
		}
		resp.Fail(c.Writer, &resp.Exception{
			Status:  http.StatusBadRequest,
			Message: "validation failed",
			Errors:  fields,
		})
		return false
	}

	resp.Fail(c.Writer, resp.BadRequest("invalid request body"))
	return false
}

// fieldPath turns a validator namespace like
// "AddSubtasksRequest.Subtasks[0].Subject" into "subtasks.0.subject".
func fieldPath(namespace string) string {
	path := namespace
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")
	return strings.ToLower(path)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must be a calendar date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
