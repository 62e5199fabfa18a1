package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/adwall/adwall/internal/formconfig"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	return verr.Fields
}

func TestValidateFields_Rules(t *testing.T) {
	t.Parallel()

	min := 0.0
	schema := formconfig.Schema{
		{Field: "title", Name: "Title", Validator: formconfig.Validator{Required: true, MaxLength: 5}},
		{Field: "url", Name: "Landing URL", Validator: formconfig.Validator{IsURL: true}},
		{Field: "pricing", Name: "Bid", Validator: formconfig.Validator{Min: &min}},
		{Field: "videos", Name: "Videos", Validator: formconfig.Validator{Required: true}},
	}

	tests := []struct {
		name      string
		values    map[string]any
		wantField string
		wantMsg   string
	}{
		{
			name:      "empty_required_string",
			values:    map[string]any{"title": "", "videos": []string{"a"}},
			wantField: "title",
			wantMsg:   "Title is required",
		},
		{
			name:      "empty_required_sequence",
			values:    map[string]any{"title": "ok", "videos": []string{}},
			wantField: "videos",
			wantMsg:   "Videos is required",
		},
		{
			name:      "max_length",
			values:    map[string]any{"title": "much too long", "videos": []string{"a"}},
			wantField: "title",
			wantMsg:   "Title must be at most 5 characters",
		},
		{
			name:      "insecure_url",
			values:    map[string]any{"title": "ok", "url": "http://x.com", "videos": []string{"a"}},
			wantField: "url",
			wantMsg:   "Landing URL must start with https://",
		},
		{
			name:      "below_min",
			values:    map[string]any{"title": "ok", "pricing": -1.0, "videos": []string{"a"}},
			wantField: "pricing",
			wantMsg:   "Bid must be at least 0",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fields := fieldErrors(t, validateFields(schema, test.values))
			msg, ok := fields[test.wantField]
			if !ok {
				t.Fatalf("no error for field %s, got %v", test.wantField, fields)
			}
			if msg != test.wantMsg {
				t.Errorf("message = %q, want %q", msg, test.wantMsg)
			}
		})
	}
}

func TestValidateFields_Passes(t *testing.T) {
	t.Parallel()

	min := 0.0
	schema := formconfig.Schema{
		{Field: "title", Name: "Title", Validator: formconfig.Validator{Required: true, MaxLength: 20}},
		{Field: "url", Name: "Landing URL", Validator: formconfig.Validator{IsURL: true}},
		{Field: "pricing", Name: "Bid", Validator: formconfig.Validator{Min: &min}},
	}

	values := map[string]any{
		"title":   "Summer sale",
		"url":     "https://example.com",
		"pricing": 0.0, // zero bid is valid
	}
	if err := validateFields(schema, values); err != nil {
		t.Fatalf("validateFields: %v", err)
	}
}

func TestValidateFields_SkipsAbsentOptionalFields(t *testing.T) {
	t.Parallel()

	schema := formconfig.Schema{
		{Field: "content", Name: "Content", Validator: formconfig.Validator{MaxLength: 3}},
	}

	// A patch without the field should not trip its rules.
	if err := validateFields(schema, map[string]any{}); err != nil {
		t.Fatalf("validateFields: %v", err)
	}
}

func TestValidateFields_PartialPatchSkipsRequiredFields(t *testing.T) {
	t.Parallel()

	schema := formconfig.Schema{
		{Field: "title", Name: "Title", Validator: formconfig.Validator{Required: true}},
		{Field: "pricing", Name: "Bid", Validator: formconfig.Validator{}},
	}

	// Editing only the bid must not demand the untouched title.
	if err := validateFields(schema, map[string]any{"pricing": 3.0}); err != nil {
		t.Fatalf("validateFields: %v", err)
	}
}

func TestValidateFields_EmptyOptionalURLPasses(t *testing.T) {
	t.Parallel()

	schema := formconfig.Schema{
		{Field: "url", Name: "Landing URL", Validator: formconfig.Validator{IsURL: true}},
	}

	if err := validateFields(schema, map[string]any{"url": ""}); err != nil {
		t.Fatalf("validateFields: %v", err)
	}
}

func TestValidateFields_CollectsAllFailingFields(t *testing.T) {
	t.Parallel()

	schema := formconfig.Schema{
		{Field: "title", Name: "Title", Validator: formconfig.Validator{Required: true}},
		{Field: "author", Name: "Author", Validator: formconfig.Validator{Required: true}},
	}

	fields := fieldErrors(t, validateFields(schema, map[string]any{}))
	if len(fields) != 2 {
		t.Fatalf("got %d field errors, want 2: %v", len(fields), fields)
	}
}

func TestValidateFields_FirstFailingRuleWins(t *testing.T) {
	t.Parallel()

	schema := formconfig.Schema{
		{Field: "url", Name: "Landing URL", Validator: formconfig.Validator{MaxLength: 5, IsURL: true}},
	}

	fields := fieldErrors(t, validateFields(schema, map[string]any{"url": "http://long.example.com"}))
	if !strings.Contains(fields["url"], "at most 5") {
		t.Errorf("message = %q, want the maxLength failure first", fields["url"])
	}
}

func TestValidateFields_MaxLengthCountsRunes(t *testing.T) {
	t.Parallel()

	schema := formconfig.Schema{
		{Field: "title", Name: "Title", Validator: formconfig.Validator{MaxLength: 4}},
	}

	if err := validateFields(schema, map[string]any{"title": "広告テスト"}); err == nil {
		t.Fatal("five runes should exceed maxLength 4")
	}
	if err := validateFields(schema, map[string]any{"title": "広告テス"}); err != nil {
		t.Fatalf("four runes should pass: %v", err)
	}
}
