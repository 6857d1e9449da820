package generator

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

// Article is the generated content handed to publishers.
type Article struct {
	Title    string
	Markdown string
	Author   string
}

// Generator turns a selected skill (plus optional detail text from
// enrichment) into a publishable article.
type Generator interface {
	Generate(ctx context.Context, skill domain.Skill, detail string) (Article, error)
}

// templateGenerator renders a fixed markdown layout. It is the fallback used
// when no generation API key is configured, so a cycle can still publish.
type templateGenerator struct {
	author string
	now    func() time.Time
}

// NewTemplateGenerator builds the offline template-based generator.
func NewTemplateGenerator(author string) Generator {
	return &templateGenerator{author: author, now: time.Now}
}

var articleTmpl = template.Must(template.New("article").Parse(`# Daily Skill Pick: {{.Name}}

> {{.Summary}}

**Category:** {{.Category}}

{{if .Detail}}{{.Detail}}

{{end}}## Where to get it

The skill lives at [{{.Name}}]({{.URL}}). Install it from the repository and
try it on your next session.

---

*Curated on {{.Date}} by {{.Author}}.*
`))

func (g *templateGenerator) Generate(_ context.Context, skill domain.Skill, detail string) (Article, error) {
	summary := strings.TrimSpace(skill.Description)
	if summary == "" {
		summary = "A community skill worth a look."
	}

	var buf strings.Builder
	err := articleTmpl.Execute(&buf, map[string]string{
		"Name":     skill.Name,
		"Summary":  summary,
		"Category": skill.Category,
		"Detail":   strings.TrimSpace(detail),
		"URL":      skill.URL,
		"Date":     g.now().Format("2006-01-02"),
		"Author":   g.author,
	})
	if err != nil {
		return Article{}, fmt.Errorf("render article template: %w", err)
	}

	return Article{
		Title:    "Daily Skill Pick: " + skill.Name,
		Markdown: buf.String(),
		Author:   g.author,
	}, nil
}
