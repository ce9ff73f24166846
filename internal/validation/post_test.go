package validation

import (
	"errors"
	"strings"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    map[string]any
		wantErr    bool
		wantFields map[string][]string
		want       models.PostInput
	}{
		{
			name:    "Valid",
			payload: map[string]any{"title": "Hello", "body": "World"},
			want:    models.PostInput{Title: "Hello", Body: "World"},
		},
		{
			name:    "Trims Whitespace",
			payload: map[string]any{"title": "  Hello ", "body": "\tWorld\n"},
			want:    models.PostInput{Title: "Hello", Body: "World"},
		},
		{
			name:    "Ignores Extra Fields",
			payload: map[string]any{"title": "T", "body": "B", "id": 99.0},
			want:    models.PostInput{Title: "T", Body: "B"},
		},
		{
			name:    "Exactly Max Title",
			payload: map[string]any{"title": strings.Repeat("a", MaxTitleLength), "body": "B"},
			want:    models.PostInput{Title: strings.Repeat("a", MaxTitleLength), Body: "B"},
		},
		{
			name:    "Multibyte Title Counts Code Points",
			payload: map[string]any{"title": strings.Repeat("é", MaxTitleLength), "body": "B"},
			want:    models.PostInput{Title: strings.Repeat("é", MaxTitleLength), Body: "B"},
		},
		{
			name:    "Missing Both",
			payload: map[string]any{},
			wantErr: true,
			wantFields: map[string][]string{
				"title": {"The title field is required."},
				"body":  {"The body field is required."},
			},
		},
		{
			name:       "Blank Title",
			payload:    map[string]any{"title": "   ", "body": "B"},
			wantErr:    true,
			wantFields: map[string][]string{"title": {"The title field is required."}},
		},
		{
			name:       "Null Body",
			payload:    map[string]any{"title": "T", "body": nil},
			wantErr:    true,
			wantFields: map[string][]string{"body": {"The body field is required."}},
		},
		{
			name:       "Numeric Title",
			payload:    map[string]any{"title": 42.0, "body": "B"},
			wantErr:    true,
			wantFields: map[string][]string{"title": {"The title field must be a string."}},
		},
		{
			name:       "Empty Array Body",
			payload:    map[string]any{"title": "T", "body": []any{}},
			wantErr:    true,
			wantFields: map[string][]string{"body": {"The body field is required."}},
		},
		{
			name:       "Title Too Long",
			payload:    map[string]any{"title": strings.Repeat("a", MaxTitleLength+1), "body": "B"},
			wantErr:    true,
			wantFields: map[string][]string{"title": {"The title field must not be greater than 255 characters."}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidatePost(tc.payload)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			require.Error(t, err)
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, tc.wantFields, appErr.Fields)
		})
	}
}

func TestValidatePost_MessageOrder(t *testing.T) {
	t.Parallel()

	_, err := ValidatePost(map[string]any{})
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "The title field is required.", appErr.Message)

	_, err = ValidatePost(map[string]any{"title": "T"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "The body field is required.", appErr.Message)
}

func TestDecodePost(t *testing.T) {
	t.Parallel()

	payload, err := DecodePost([]byte(`{"title":"T","body":"B"}`))
	require.NoError(t, err)
	assert.Equal(t, "T", payload["title"])

	payload, err = DecodePost(nil)
	require.NoError(t, err)
	assert.Empty(t, payload)

	payload, err = DecodePost([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, payload)

	for _, raw := range []string{`{"title":`, `[1,2]`, `"text"`} {
		_, err = DecodePost([]byte(raw))
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr), "input %q", raw)
		assert.Equal(t, models.CodeBadRequest, appErr.Code)
	}
}
