package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

const maxCatalogBodyBytes = 2 << 20 // 2 MiB

// skillsHTMLFetcher scrapes marketplace catalog pages that expose no API.
// It collects GitHub-pointing anchors and treats the anchor text as the name.
type skillsHTMLFetcher struct {
	client HTTPClient
	now    func() time.Time
}

// NewSkillsHTMLFetcher builds a fetcher for HTML catalog sources.
func NewSkillsHTMLFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &skillsHTMLFetcher{
		client: client,
		now:    time.Now,
	}
}

func (f *skillsHTMLFetcher) ID() string {
	return TypeSkillsHTML
}

func (f *skillsHTMLFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Skill, error) {
	if !strings.EqualFold(cfg.Type, TypeSkillsHTML) {
		return nil, fmt.Errorf("skills html fetcher received incompatible source type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("source %q source_url is empty", cfg.ID)
	}

	headers := Headers(cfg)

	body, err := fetchListing(ctx, f.client, cfg.SourceURL, cfg.ID, headers)
	if err != nil {
		return nil, err
	}
	if len(body) > maxCatalogBodyBytes {
		body = body[:maxCatalogBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s catalog html: %w", cfg.ID, err)
	}

	base, err := url.Parse(cfg.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s source_url: %w", cfg.ID, err)
	}

	selector := ConfigString(cfg, ConfigLinkSelectorKey, "a[href]")
	fetchedAt := f.now()

	var skills []domain.Skill
	seen := make(map[string]bool)
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		link := resolveLink(base, href)
		if link == "" || !strings.Contains(strings.ToLower(link), "github") {
			return
		}
		if seen[link] {
			return
		}

		name := anchorName(sel)
		if name == "" {
			return
		}

		seen[link] = true
		skills = append(skills, domain.Skill{
			Name:        name,
			URL:         link,
			Description: anchorDescription(sel),
			Category:    domain.DefaultCategory,
			Source:      cfg.ID,
			FetchedAt:   fetchedAt,
		})
	})

	if len(skills) == 0 {
		return nil, fmt.Errorf("%s catalog yielded no skill entries", cfg.ID)
	}
	return skills, nil
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// anchorName prefers a nested heading over the raw anchor text.
func anchorName(sel *goquery.Selection) string {
	if h := sel.Find("h2, h3").First(); h.Length() > 0 {
		return strings.TrimSpace(h.Text())
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// anchorDescription takes the first adjacent paragraph, if any.
func anchorDescription(sel *goquery.Selection) string {
	if p := sel.NextFiltered("p").First(); p.Length() > 0 {
		return strings.TrimSpace(p.Text())
	}
	if p := sel.Find("p").First(); p.Length() > 0 {
		return strings.TrimSpace(p.Text())
	}
	return ""
}
