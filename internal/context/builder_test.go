package contextbuilder

import (
	"context"
	"strings"
	"testing"

	"github.com/leadforge/leadforge-back/internal/domain"
)

func TestBuildProducesPrioritizedContext(t *testing.T) {
	builder := NewBuilder(NewBusinessRetriever())

	output, err := builder.Build(context.Background(), BuildInput{
		Agent: domain.AgentWebsite,
		Business: domain.BusinessRecord{
			ID:          "biz-1",
			Name:        "Rosa's Cantina",
			Category:    "restaurant",
			Location:    "Austin, TX",
			Phone:       "+1 512 555 0100",
			Rating:      4.7,
			ReviewCount: 182,
		},
		Notes: []string{"Owner wants an online reservation call to action."},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !strings.HasPrefix(output.ContextText, "Business context:") {
		t.Fatalf("unexpected context header: %s", output.ContextText)
	}
	if !strings.Contains(output.ContextText, "Rosa's Cantina") {
		t.Fatalf("expected business name in context: %s", output.ContextText)
	}
	if !strings.Contains(output.ContextText, "reservation") {
		t.Fatalf("expected analyst note in context: %s", output.ContextText)
	}
	if output.TokenCount <= 0 {
		t.Fatalf("expected positive token estimate")
	}
}

func TestBuildFallsBackWhenRecordIsBare(t *testing.T) {
	builder := NewBuilder(NewBusinessRetriever())

	output, err := builder.Build(context.Background(), BuildInput{
		Agent:    domain.AgentContent,
		Business: domain.BusinessRecord{},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(output.Chunks) == 0 {
		t.Fatalf("expected at least a fallback chunk")
	}
}

func TestBuildDedupesRepeatedNotes(t *testing.T) {
	builder := NewBuilder(NewBusinessRetriever())

	output, err := builder.Build(context.Background(), BuildInput{
		Agent:    domain.AgentMarketing,
		Business: domain.BusinessRecord{ID: "biz-2", Name: "Peak Fitness"},
		Notes: []string{
			"Focus on morning class schedule.",
			"Focus   on morning class schedule.",
		},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	occurrences := strings.Count(output.ContextText, "morning class schedule")
	if occurrences != 1 {
		t.Fatalf("expected note to be deduplicated, found %d occurrences", occurrences)
	}
}

func TestBuildCachesByAgentAndBusiness(t *testing.T) {
	builder := NewBuilder(NewBusinessRetriever())
	input := BuildInput{
		Agent:    domain.AgentWebsite,
		Business: domain.BusinessRecord{ID: "biz-3", Name: "Lakeside Dental"},
	}

	first, err := builder.Build(context.Background(), input)
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	second, err := builder.Build(context.Background(), input)
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if first.ContextText != second.ContextText {
		t.Fatalf("expected cached context to match")
	}
}
