// Package validation provides input validation utilities
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"postboard/internal/models"
)

// MaxTitleLength is counted in Unicode code points.
const MaxTitleLength = 255

// postFields lists the writable post fields in reporting order.
var postFields = []string{"title", "body"}

// DecodePost parses a JSON request body into a generic object so that field
// presence and type can be checked before binding.
func DecodePost(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, models.NewBadRequestError("Invalid request body")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// ValidatePost checks that title and body are present, are strings, and that
// title fits in MaxTitleLength. Strings are trimmed before any check. On
// failure it returns a *models.AppError carrying every field message.
func ValidatePost(payload map[string]any) (models.PostInput, error) {
	errs := map[string][]string{}

	title, msgs := requiredString(payload, "title")
	if len(msgs) == 0 && utf8.RuneCountInString(title) > MaxTitleLength {
		msgs = append(msgs, fmt.Sprintf("The title field must not be greater than %d characters.", MaxTitleLength))
	}
	if len(msgs) > 0 {
		errs["title"] = msgs
	}

	body, msgs := requiredString(payload, "body")
	if len(msgs) > 0 {
		errs["body"] = msgs
	}

	if len(errs) > 0 {
		return models.PostInput{}, models.NewFieldValidationError(errs, postFields...)
	}
	return models.PostInput{Title: title, Body: body}, nil
}

// requiredString returns the trimmed string value of field or the messages
// explaining why it is unusable.
func requiredString(payload map[string]any, field string) (string, []string) {
	value, ok := payload[field]
	if !ok || isEmpty(value) {
		return "", []string{fmt.Sprintf("The %s field is required.", field)}
	}
	s, ok := value.(string)
	if !ok {
		return "", []string{fmt.Sprintf("The %s field must be a string.", field)}
	}
	return strings.TrimSpace(s), nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
