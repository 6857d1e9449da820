package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

func TestTemplateGeneratorRendersArticle(t *testing.T) {
	g := NewTemplateGenerator("digest-bot")

	skill := domain.Skill{
		Name:        "Repo Helper",
		URL:         "https://github.com/acme/repo-helper",
		Description: "Automates repository chores.",
		Category:    "Development",
	}

	article, err := g.Generate(context.Background(), skill, "Keeps branches tidy on every push.")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if article.Title != "Daily Skill Pick: Repo Helper" {
		t.Fatalf("unexpected title %q", article.Title)
	}
	if article.Author != "digest-bot" {
		t.Fatalf("unexpected author %q", article.Author)
	}
	for _, want := range []string{
		"# Daily Skill Pick: Repo Helper",
		"> Automates repository chores.",
		"**Category:** Development",
		"Keeps branches tidy on every push.",
		"[Repo Helper](https://github.com/acme/repo-helper)",
	} {
		if !strings.Contains(article.Markdown, want) {
			t.Fatalf("markdown missing %q:\n%s", want, article.Markdown)
		}
	}
}

func TestTemplateGeneratorDefaultsSummary(t *testing.T) {
	g := NewTemplateGenerator("digest-bot")

	skill := domain.Skill{Name: "Bare", URL: "https://github.com/acme/bare", Category: "General"}
	article, err := g.Generate(context.Background(), skill, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(article.Markdown, "A community skill worth a look.") {
		t.Fatalf("missing summary fallback:\n%s", article.Markdown)
	}
}

func TestBuildPrompt(t *testing.T) {
	skill := domain.Skill{
		Name:        "Repo Helper",
		URL:         "https://github.com/acme/repo-helper",
		Description: "Automates repository chores.",
		Category:    "Development",
	}

	prompt := buildPrompt(skill, "extra detail text")
	for _, want := range []string{
		"Skill name: Repo Helper",
		"Repository: https://github.com/acme/repo-helper",
		"Category: Development",
		"Listing description: Automates repository chores.",
		"extra detail text",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	bare := buildPrompt(domain.Skill{Name: "Bare", URL: "https://github.com/acme/bare"}, "")
	if strings.Contains(bare, "Listing description") || strings.Contains(bare, "Additional detail") {
		t.Fatalf("empty fields should be omitted:\n%s", bare)
	}
}
