// Package formconfig loads the form schema descriptor that drives both the
// UI form rendering and server-side validation of ad fields.
package formconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// RuleKind identifies one validator rule.
type RuleKind int

const (
	// RuleRequired requires a present, non-empty value.
	RuleRequired RuleKind = iota
	// RuleMaxLength bounds a string's length in runes.
	RuleMaxLength
	// RuleMin sets a numeric lower bound.
	RuleMin
	// RuleIsURL requires an https:// prefix.
	RuleIsURL
)

// Rule is one validator rule with its numeric bound, if any.
type Rule struct {
	Kind  RuleKind
	Bound float64
}

// Validator mirrors the validator object of the form-config document.
type Validator struct {
	Required  bool     `json:"required,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	IsURL     bool     `json:"isUrl,omitempty"`
}

// Rules expands the validator into an ordered rule list. Evaluation order
// is fixed: required first, then bounds, then the URL scheme check.
func (v Validator) Rules() []Rule {
	var rules []Rule
	if v.Required {
		rules = append(rules, Rule{Kind: RuleRequired})
	}
	if v.MaxLength > 0 {
		rules = append(rules, Rule{Kind: RuleMaxLength, Bound: float64(v.MaxLength)})
	}
	if v.Min != nil {
		rules = append(rules, Rule{Kind: RuleMin, Bound: *v.Min})
	}
	if v.IsURL {
		rules = append(rules, Rule{Kind: RuleIsURL})
	}
	return rules
}

// Field describes one form field: its key in ad records, its display
// name, and the validator applied to it.
type Field struct {
	Field     string    `json:"field"`
	Name      string    `json:"name"`
	Validator Validator `json:"validator"`
}

// Schema is the ordered field list of the form-config document.
type Schema []Field

// Lookup returns the schema entry for a field key.
func (s Schema) Lookup(key string) (Field, bool) {
	for _, f := range s {
		if f.Field == key {
			return f, true
		}
	}
	return Field{}, false
}

// Load reads and parses a form-config document from disk.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form config: %w", err)
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse form config: %w", err)
	}

	return schema, nil
}
