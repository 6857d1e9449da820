package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/internal/logger"
	"github.com/skillhive-hq/skill-digest/pkg/httpclient"
)

// OpenRouterConfig holds the settings for the chat-completions generator.
type OpenRouterConfig struct {
	APIKey      string
	URL         string
	Model       string
	BackupModel string
	Author      string
}

// openRouterGenerator produces articles through an OpenAI-compatible
// chat-completions endpoint, retrying once on a backup model. When no API
// key is configured it degrades to the template generator.
type openRouterGenerator struct {
	cfg      OpenRouterConfig
	client   *resty.Client
	fallback Generator
	log      logger.Logger
}

// NewOpenRouterGenerator builds the API-backed generator.
func NewOpenRouterGenerator(cfg OpenRouterConfig, log logger.Logger) Generator {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &openRouterGenerator{
		cfg:      cfg,
		client:   httpclient.NewRestyHTTPClient(120 * time.Second),
		fallback: NewTemplateGenerator(cfg.Author),
		log:      log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are an editor writing a short daily recommendation " +
	"article about one coding-assistant skill. Write engaging markdown with a " +
	"title line, what the skill does, why it is useful, and how to get started. " +
	"Do not invent capabilities beyond the provided description."

func (g *openRouterGenerator) Generate(ctx context.Context, skill domain.Skill, detail string) (Article, error) {
	if g.cfg.APIKey == "" {
		g.log.InfoObj("no generation api key, using template article", "skill", skill.Name)
		return g.fallback.Generate(ctx, skill, detail)
	}

	prompt := buildPrompt(skill, detail)

	content, err := g.complete(ctx, g.cfg.Model, prompt)
	if err != nil && g.cfg.BackupModel != "" && g.cfg.BackupModel != g.cfg.Model {
		g.log.WarnObj("generation failed, trying backup model", "generation_error", map[string]any{
			"model":  g.cfg.Model,
			"backup": g.cfg.BackupModel,
			"error":  err.Error(),
		})
		content, err = g.complete(ctx, g.cfg.BackupModel, prompt)
	}
	if err != nil {
		return Article{}, fmt.Errorf("generate article for %q: %w", skill.Name, err)
	}

	return Article{
		Title:    "Daily Skill Pick: " + skill.Name,
		Markdown: content,
		Author:   g.cfg.Author,
	}, nil
}

func (g *openRouterGenerator) complete(ctx context.Context, model, prompt string) (string, error) {
	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   3000,
	}

	var out chatResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+g.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&out).
		Post(g.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return "", fmt.Errorf("chat completion status %d: %s", resp.StatusCode(), snippet)
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("chat completion returned no content")
	}
	return out.Choices[0].Message.Content, nil
}

func buildPrompt(skill domain.Skill, detail string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Skill name: %s\n", skill.Name)
	fmt.Fprintf(&b, "Repository: %s\n", skill.URL)
	fmt.Fprintf(&b, "Category: %s\n", skill.Category)
	if skill.Description != "" {
		fmt.Fprintf(&b, "Listing description: %s\n", skill.Description)
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		fmt.Fprintf(&b, "\nAdditional detail from the repository page:\n%s\n", detail)
	}
	return b.String()
}
