package policy

import (
	"errors"
	"strings"
)

var ErrContentPolicyViolation = errors.New("content policy violation")

type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Evaluation struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`
}

type PolicyViolationError struct {
	Violations []Violation
}

func (e *PolicyViolationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrContentPolicyViolation.Error()
	}
	return "content policy violation: " + e.Violations[0].Message
}

func (e *PolicyViolationError) Unwrap() error {
	return ErrContentPolicyViolation
}

// EnforceGeneratedContent rejects artifact payloads that would embarrass the
// business owner if published as-is.
func EnforceGeneratedContent(content string) error {
	evaluation := EvaluateGeneratedContent(content)
	if evaluation.Allowed {
		return nil
	}
	return &PolicyViolationError{Violations: evaluation.Violations}
}

func EvaluateGeneratedContent(content string) Evaluation {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Evaluation{
			Allowed: false,
			Violations: []Violation{{
				Code:    "empty_content",
				Message: "generated content is empty",
			}},
		}
	}

	violations := make([]Violation, 0, 2)
	lowered := strings.ToLower(trimmed)
	for _, token := range placeholderMarkers {
		if strings.Contains(lowered, token) {
			violations = append(violations, Violation{
				Code:    "unresolved_placeholder",
				Message: "generated content contains unresolved placeholder text",
			})
			break
		}
	}
	for _, token := range refusalMarkers {
		if strings.Contains(lowered, token) {
			violations = append(violations, Violation{
				Code:    "model_refusal",
				Message: "generated content is a model refusal, not a deliverable",
			})
			break
		}
	}

	if len(violations) == 0 {
		return Evaluation{Allowed: true}
	}
	return Evaluation{
		Allowed:    false,
		Violations: dedupeViolations(violations),
	}
}

// placeholderMarkers are tokens that only appear when a template slot or
// model instruction leaked into the output.
var placeholderMarkers = []string{
	"lorem ipsum",
	"[insert",
	"[your ",
	"your text here",
	"{{",
	"xxx-xxx",
	"[business name]",
	"[city]",
}

var refusalMarkers = []string{
	"i cannot create",
	"i can't create",
	"as an ai",
	"i'm unable to generate",
}

func dedupeViolations(values []Violation) []Violation {
	seen := make(map[string]struct{}, len(values))
	result := make([]Violation, 0, len(values))
	for _, value := range values {
		key := value.Code + "|" + value.Message
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, value)
	}
	return result
}
