package sources

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

// awesomeListFetcher parses a curated markdown listing ("awesome list") into skills.
// Section headings carry the category; list entries carry name, link, and description.
type awesomeListFetcher struct {
	client HTTPClient
	now    func() time.Time
}

// NewAwesomeListFetcher builds a fetcher for markdown awesome-list sources.
func NewAwesomeListFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &awesomeListFetcher{
		client: client,
		now:    time.Now,
	}
}

func (f *awesomeListFetcher) ID() string {
	return TypeAwesomeList
}

func (f *awesomeListFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Skill, error) {
	if !strings.EqualFold(cfg.Type, TypeAwesomeList) {
		return nil, fmt.Errorf("awesome list fetcher received incompatible source type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("source %q source_url is empty", cfg.ID)
	}

	headers := Headers(cfg)

	raw, err := fetchListing(ctx, f.client, cfg.SourceURL, cfg.ID, headers)
	if err != nil {
		return nil, err
	}

	skills := parseAwesomeList(string(raw), cfg.ID, f.now())
	if len(skills) == 0 {
		return nil, fmt.Errorf("%s listing yielded no skill entries", cfg.ID)
	}
	return skills, nil
}

var (
	headingRe = regexp.MustCompile(`^#{2,4}\s+(.+)$`)

	// Entry formats seen in the wild: "- [Name](url) - desc",
	// "- **[Name](url)**: desc", "1. [Name](url) – desc", indented sublists.
	entryRes = []*regexp.Regexp{
		regexp.MustCompile(`^[-*•]\s+\*{0,2}\[([^\]]+)\]\(([^)]+)\)\*{0,2}:?\s*[-–:]?\s*(.*)$`),
		regexp.MustCompile(`^\d+\.\s+\*{0,2}\[([^\]]+)\]\(([^)]+)\)\*{0,2}\s*[-–:]?\s*(.*)$`),
		regexp.MustCompile(`^\s{2,}[-*]\s+\[([^\]]+)\]\(([^)]+)\)\s*[-–:]?\s*(.*)$`),
	}

	repoRootRe = regexp.MustCompile(`^https?://github\.com/[^/]+/[^/]+/?$`)
)

// Link targets that are decoration or social links, never skill entries.
var skipLinkFragments = []string{
	"badge", "shield", "twitter", "linkedin", "discord",
	"buymeacoffee", "ko-fi", "sponsor", "paypal", "patreon",
}

// Sections of an awesome list that collect reading material rather than skills.
var skipCategories = []string{
	"written tutorials", "video tutorials", "documentation",
	"articles & blog posts", "getting help", "community",
	"resources", "learning resources", "guides", "templates",
	"getting started", "skill creation", "creating your first skill",
	"recent updates", "troubleshooting", "faq", "contributing",
	"security & best practices", "known issues",
}

// Keywords that mark an entry as a tutorial/article rather than a skill.
var skipKeywords = []string{
	"tutorial", "guide", "documentation", "article", "blog",
	"/issues", "/discussions", "how to", "how-to", "learn", "course",
}

var invalidURLFragments = []string{
	"/issues", "/discussions", "/pulls", "/wiki", "/releases",
	"/actions", "/projects", "/security", "/pulse", "/graphs",
	"support.", "docs.", "blog.", ".ai/blog", ".com/blog",
}

var validURLFragments = []string{
	"/tree/main/skills/",
	"/tree/master/skills/",
	"/blob/main/SKILL.md",
	"/blob/master/SKILL.md",
}

func parseAwesomeList(content, sourceID string, fetchedAt time.Time) []domain.Skill {
	var skills []domain.Skill
	currentCategory := domain.DefaultCategory

	for _, line := range strings.Split(content, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			currentCategory = cleanHeading(m[1])
			continue
		}
		if skippedCategory(currentCategory) {
			continue
		}

		for _, re := range entryRes {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			name := strings.TrimSpace(m[1])
			url := strings.TrimSpace(m[2])
			description := strings.TrimSpace(m[3])

			if containsAny(strings.ToLower(url), skipLinkFragments) {
				break
			}
			// Anchor links are table-of-contents entries.
			if strings.HasPrefix(url, "#") {
				break
			}
			if !validSkillURL(url) {
				break
			}
			combined := strings.ToLower(name + " " + url + " " + description)
			if containsAny(combined, skipKeywords) {
				break
			}

			skills = append(skills, domain.Skill{
				Name:        name,
				URL:         url,
				Description: strings.TrimRight(description, ".,;:"),
				Category:    currentCategory,
				Source:      sourceID,
				FetchedAt:   fetchedAt,
			})
			break
		}
	}

	return skills
}

// cleanHeading strips emoji/symbol prefixes from a section heading.
func cleanHeading(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimLeftFunc(h, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	h = strings.TrimSpace(h)
	if h == "" {
		return domain.DefaultCategory
	}
	return h
}

func skippedCategory(category string) bool {
	lc := strings.ToLower(category)
	for _, skip := range skipCategories {
		if strings.Contains(lc, skip) {
			return true
		}
	}
	return false
}

// validSkillURL accepts GitHub links that plausibly point at a skill:
// skills subtrees, SKILL.md blobs, or a bare repo root.
func validSkillURL(url string) bool {
	if !strings.Contains(url, "github.com") {
		return false
	}
	if containsAny(strings.ToLower(url), invalidURLFragments) {
		return false
	}
	for _, fragment := range validURLFragments {
		if strings.Contains(url, fragment) {
			return true
		}
	}
	return repoRootRe.MatchString(url)
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
