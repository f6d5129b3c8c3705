package policy

import (
	"strings"
	"testing"
)

func TestEvaluateGeneratedContentRejectsPlaceholders(t *testing.T) {
	evaluation := EvaluateGeneratedContent("<html><body>Welcome to [Business Name]</body></html>")
	if evaluation.Allowed {
		t.Fatalf("expected placeholder content to be rejected")
	}
	if evaluation.Violations[0].Code != "unresolved_placeholder" {
		t.Fatalf("unexpected violation code %s", evaluation.Violations[0].Code)
	}
}

func TestEvaluateGeneratedContentRejectsRefusals(t *testing.T) {
	if err := EnforceGeneratedContent("I'm unable to generate a website for this request."); err == nil {
		t.Fatalf("expected refusal text to be rejected")
	}
}

func TestEvaluateGeneratedContentAllowsNormalDocument(t *testing.T) {
	evaluation := EvaluateGeneratedContent("<!DOCTYPE html><html><body><h1>Rosa's Cantina</h1></body></html>")
	if !evaluation.Allowed {
		t.Fatalf("expected clean document to pass, got %+v", evaluation.Violations)
	}
}

func TestMaskPIIStringMasksContactsAndSecrets(t *testing.T) {
	input := "contact user@example.com or +55 11 99999-9999 with key sk-abcdefghij0123456789"
	masked := MaskPIIString(input)

	if strings.Contains(masked, "user@example.com") {
		t.Fatalf("expected email to be masked: %s", masked)
	}
	if strings.Contains(masked, "99999-9999") {
		t.Fatalf("expected phone to be masked: %s", masked)
	}
	if strings.Contains(masked, "sk-abcdefghij") {
		t.Fatalf("expected api key to be masked: %s", masked)
	}
}

func TestMaskPIIJSONMasksNestedStrings(t *testing.T) {
	payload := []byte(`{"error":{"message":"invalid key sk-abcdefghij0123456789 for user@example.com"}}`)
	masked := MaskPIIJSON(payload)

	raw := string(masked)
	if strings.Contains(raw, "user@example.com") {
		t.Fatalf("expected email to be masked")
	}
	if strings.Contains(raw, "sk-abcdefghij") {
		t.Fatalf("expected key to be masked")
	}
}
