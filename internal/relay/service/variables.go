package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/corvusHold/relay/internal/relay/domain"
)

// SanitizeVariables validates template variables shared by both pipelines.
// A nil result with a nil error means "no variables".
func SanitizeVariables(raw any, maxLen int) (map[string]string, error) {
	if !truthy(raw) {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, domain.Malformed(domain.ReasonVariablesNotMap)
	}
	vars := make(map[string]string, len(m))
	for key, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, domain.Malformed(domain.ReasonVariablesNotString)
		}
		if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
			return nil, domain.PolicyViolation(fmt.Sprintf("variable too long: %q", s))
		}
		vars[key] = s
	}
	return vars, nil
}
