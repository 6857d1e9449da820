package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

// skillsAPIFetcher pulls skills from marketplace JSON APIs. The marketplaces
// disagree on payload shape and field names, so decoding is permissive.
type skillsAPIFetcher struct {
	client HTTPClient
	now    func() time.Time
}

// NewSkillsAPIFetcher builds a fetcher for marketplace JSON API sources.
func NewSkillsAPIFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &skillsAPIFetcher{
		client: client,
		now:    time.Now,
	}
}

func (f *skillsAPIFetcher) ID() string {
	return TypeSkillsAPI
}

func (f *skillsAPIFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Skill, error) {
	if !strings.EqualFold(cfg.Type, TypeSkillsAPI) {
		return nil, fmt.Errorf("skills api fetcher received incompatible source type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("source %q source_url is empty", cfg.ID)
	}

	headers := Headers(cfg)
	if _, ok := headers["Accept"]; !ok {
		headers["Accept"] = "application/json"
	}

	raw, err := fetchListing(ctx, f.client, cfg.SourceURL, cfg.ID, headers)
	if err != nil {
		return nil, err
	}

	items, err := decodeSkillItems(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", cfg.ID, err)
	}

	fetchedAt := f.now()
	skills := make([]domain.Skill, 0, len(items))
	for _, item := range items {
		skill := skillFromItem(item, cfg.ID, fetchedAt)
		if skill.Valid() {
			skills = append(skills, skill)
		}
	}
	if len(skills) == 0 {
		return nil, fmt.Errorf("%s payload contained no usable skills", cfg.ID)
	}
	return skills, nil
}

// decodeSkillItems accepts either a bare array or an object wrapping the
// array under "skills" or "data".
func decodeSkillItems(raw []byte) ([]map[string]any, error) {
	var direct []map[string]any
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}

	for _, key := range []string{"skills", "data"} {
		inner, ok := wrapped[key]
		if !ok {
			continue
		}
		var items []map[string]any
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		return items, nil
	}

	return nil, fmt.Errorf("payload has neither a top-level array nor a skills/data field")
}

func skillFromItem(item map[string]any, sourceID string, fetchedAt time.Time) domain.Skill {
	category := firstString(item, "category")
	if category == "" {
		category = firstTag(item)
	}
	if category == "" {
		category = domain.DefaultCategory
	}

	return domain.Skill{
		Name:        firstString(item, "name", "title"),
		URL:         firstString(item, "url", "github_url", "link"),
		Description: firstString(item, "description", "summary"),
		Category:    category,
		Source:      sourceID,
		FetchedAt:   fetchedAt,
	}
}

func firstString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if raw, ok := item[key]; ok {
			if s, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func firstTag(item map[string]any) string {
	raw, ok := item["tags"]
	if !ok {
		return ""
	}
	tags, ok := raw.([]any)
	if !ok || len(tags) == 0 {
		return ""
	}
	if s, ok := tags[0].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
