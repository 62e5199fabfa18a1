package formconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `[
  {"field": "title", "name": "Title", "validator": {"required": true, "maxLength": 20}},
  {"field": "pricing", "name": "Bid", "validator": {"min": 0}},
  {"field": "url", "name": "Landing URL", "validator": {"isUrl": true}}
]`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form-config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	schema, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(schema) != 3 {
		t.Fatalf("len(schema) = %d, want 3", len(schema))
	}
	if schema[0].Field != "title" || schema[0].Name != "Title" {
		t.Errorf("schema[0] = %+v, want title/Title", schema[0])
	}
	if !schema[0].Validator.Required {
		t.Error("title should be required")
	}
	if schema[1].Validator.Min == nil || *schema[1].Validator.Min != 0 {
		t.Errorf("pricing min = %v, want 0", schema[1].Validator.Min)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeConfig(t, "{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidator_Rules_Order(t *testing.T) {
	t.Parallel()

	min := 1.5
	v := Validator{Required: true, MaxLength: 10, Min: &min, IsURL: true}

	rules := v.Rules()
	want := []RuleKind{RuleRequired, RuleMaxLength, RuleMin, RuleIsURL}
	if len(rules) != len(want) {
		t.Fatalf("len(rules) = %d, want %d", len(rules), len(want))
	}
	for i, kind := range want {
		if rules[i].Kind != kind {
			t.Errorf("rules[%d].Kind = %d, want %d", i, rules[i].Kind, kind)
		}
	}
	if rules[1].Bound != 10 {
		t.Errorf("maxLength bound = %v, want 10", rules[1].Bound)
	}
	if rules[2].Bound != 1.5 {
		t.Errorf("min bound = %v, want 1.5", rules[2].Bound)
	}
}

func TestValidator_Rules_ZeroMin(t *testing.T) {
	t.Parallel()

	// min: 0 is a real rule, distinct from an absent min.
	zero := 0.0
	rules := Validator{Min: &zero}.Rules()
	if len(rules) != 1 || rules[0].Kind != RuleMin || rules[0].Bound != 0 {
		t.Fatalf("rules = %+v, want single min(0)", rules)
	}
}

func TestSchema_Lookup(t *testing.T) {
	t.Parallel()

	schema := Schema{{Field: "title"}, {Field: "pricing"}}

	if f, ok := schema.Lookup("pricing"); !ok || f.Field != "pricing" {
		t.Errorf("Lookup(pricing) = %+v, %v", f, ok)
	}
	if _, ok := schema.Lookup("nope"); ok {
		t.Error("Lookup(nope) should miss")
	}
}
