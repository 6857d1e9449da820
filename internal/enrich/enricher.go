package enrich

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/internal/logger"
	"github.com/skillhive-hq/skill-digest/internal/storage"
	"github.com/skillhive-hq/skill-digest/pkg/httpclient"
	"github.com/skillhive-hq/skill-digest/pkg/sources"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxDetailChars   = 2000
)

// Enricher fetches the selected skill's page and extracts descriptive text
// (OG metadata, repo about text) to feed content generation. Results are
// cached in the detail store; enrichment failures are never fatal, the
// skill's own description is the fallback.
type Enricher struct {
	client httpclient.Client
	cache  storage.Store
	log    logger.Logger
}

// New constructs an enricher with the provided HTTP client (or default) and
// detail cache (may be nil).
func New(client httpclient.Client, cache storage.Store, log logger.Logger) *Enricher {
	if client == nil {
		client = sources.DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Enricher{client: client, cache: cache, log: log}
}

// Detail returns descriptive text for the skill, from cache when possible.
func (e *Enricher) Detail(ctx context.Context, skill domain.Skill) string {
	if e.cache != nil {
		if detail, ok, err := e.cache.GetDetail(skill.URL); err == nil && ok {
			e.log.DebugObj("detail cache hit", "url", skill.URL)
			return detail
		} else if err != nil {
			e.log.WarnObj("detail cache read failed", "cache_error", map[string]any{
				"url":   skill.URL,
				"error": err.Error(),
			})
		}
	}

	detail, err := e.fetchAndParse(ctx, skill)
	if err != nil {
		e.log.WarnObj("skill detail scrape failed", "detail_error", map[string]any{
			"url":   skill.URL,
			"error": err.Error(),
		})
		return skill.Description
	}

	if e.cache != nil {
		if err := e.cache.PutDetail(skill.URL, detail); err != nil {
			e.log.WarnObj("detail cache write failed", "cache_error", map[string]any{
				"url":   skill.URL,
				"error": err.Error(),
			})
		}
	}
	return detail
}

func (e *Enricher) fetchAndParse(ctx context.Context, skill domain.Skill) (string, error) {
	resp, err := e.client.Get(ctx, skill.URL, nil)
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	detail, err := parseDetail(body)
	if err != nil {
		return "", err
	}
	if detail == "" {
		return "", fmt.Errorf("page yielded no descriptive text")
	}
	return detail, nil
}

// parseDetail pulls OG metadata and the repo about/readme lead text.
func parseDetail(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var parts []string

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, v)
			}
		}
	}

	// GitHub renders the readme inside an article element.
	doc.Find("article p").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			parts = append(parts, text)
		}
		return i < 2
	})

	detail := strings.Join(parts, "\n\n")
	if len(detail) > maxDetailChars {
		detail = detail[:maxDetailChars]
	}
	return strings.TrimSpace(detail), nil
}
