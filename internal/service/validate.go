package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adwall/adwall/internal/formconfig"
)

// secureSchemePrefix is what the isUrl rule demands of landing pages.
const secureSchemePrefix = "https://"

// ValidationError reports every field that failed validation, keyed by the
// form-config field key.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, field+": "+msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// validateFields interprets the schema's rules over the supplied field
// values. Only fields present in values are checked — create passes every
// schema field, edit passes only the patched ones, so a partial edit never
// trips required rules for untouched fields. Per field, the first failing
// rule wins, matching the form's behavior.
func validateFields(schema formconfig.Schema, values map[string]any) error {
	failures := make(map[string]string)

	for _, field := range schema {
		value, present := values[field.Field]
		if !present {
			continue
		}

		for _, rule := range field.Validator.Rules() {
			if msg := checkRule(field, rule, value); msg != "" {
				failures[field.Field] = msg
				break
			}
		}
	}

	if len(failures) > 0 {
		return &ValidationError{Fields: failures}
	}
	return nil
}

// checkRule evaluates one rule against one value, returning a message on
// failure and "" on success. Rules apply only to the value shapes they
// understand; anything else passes through.
func checkRule(field formconfig.Field, rule formconfig.Rule, value any) string {
	switch rule.Kind {
	case formconfig.RuleRequired:
		if isEmpty(value) {
			return fmt.Sprintf("%s is required", field.Name)
		}

	case formconfig.RuleMaxLength:
		if s, ok := value.(string); ok && utf8.RuneCountInString(s) > int(rule.Bound) {
			return fmt.Sprintf("%s must be at most %d characters", field.Name, int(rule.Bound))
		}

	case formconfig.RuleMin:
		if n, ok := numeric(value); ok && n < rule.Bound {
			return fmt.Sprintf("%s must be at least %v", field.Name, rule.Bound)
		}

	case formconfig.RuleIsURL:
		if s, ok := value.(string); ok && s != "" && !strings.HasPrefix(s, secureSchemePrefix) {
			return fmt.Sprintf("%s must start with %s", field.Name, secureSchemePrefix)
		}
	}
	return ""
}

// isEmpty treats the empty string, a nil value and an empty sequence as
// absent. A numeric zero is a real value.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
