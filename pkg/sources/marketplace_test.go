package sources

import (
	"context"
	"testing"
)

func TestDecodeSkillItemsBareArray(t *testing.T) {
	items, err := decodeSkillItems([]byte(`[{"name": "One"}, {"name": "Two"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestDecodeSkillItemsWrapped(t *testing.T) {
	items, err := decodeSkillItems([]byte(`{"skills": [{"name": "One"}]}`))
	if err != nil {
		t.Fatalf("decode skills wrapper: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	items, err = decodeSkillItems([]byte(`{"data": [{"name": "One"}], "total": 1}`))
	if err != nil {
		t.Fatalf("decode data wrapper: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestDecodeSkillItemsUnknownShape(t *testing.T) {
	if _, err := decodeSkillItems([]byte(`{"results": []}`)); err == nil {
		t.Fatalf("expected error for unknown wrapper key")
	}
	if _, err := decodeSkillItems([]byte(`"just a string"`)); err == nil {
		t.Fatalf("expected error for scalar payload")
	}
}

func TestSkillsAPIFetchMapsFields(t *testing.T) {
	payload := `{"skills": [
		{"title": "Alpha", "github_url": "https://github.com/acme/alpha", "summary": "does alpha things", "tags": ["DevOps", "ci"]},
		{"name": "Beta", "url": "https://github.com/acme/beta", "description": "does beta things", "category": "Testing"},
		{"name": "", "url": "https://github.com/acme/nameless"},
		{"name": "NoURL"}
	]}`

	client := &fakeHTTPClient{body: payload, status: 200}
	f := NewSkillsAPIFetcher(client)

	cfg := Source{ID: "market", Name: "Market", Type: TypeSkillsAPI, SourceURL: "https://example.com/api"}
	skills, err := f.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("expected 2 usable skills, got %d: %+v", len(skills), skills)
	}

	if skills[0].Name != "Alpha" || skills[0].URL != "https://github.com/acme/alpha" {
		t.Fatalf("alternate field names not mapped: %+v", skills[0])
	}
	if skills[0].Description != "does alpha things" {
		t.Fatalf("summary not mapped: %+v", skills[0])
	}
	if skills[0].Category != "DevOps" {
		t.Fatalf("first tag should become category, got %q", skills[0].Category)
	}

	if skills[1].Category != "Testing" {
		t.Fatalf("explicit category should win, got %q", skills[1].Category)
	}
	if skills[1].Source != "market" {
		t.Fatalf("source id not stamped, got %q", skills[1].Source)
	}

	if client.headers["Accept"] != "application/json" {
		t.Fatalf("expected default Accept header, got %v", client.headers)
	}
}

func TestSkillsAPIFetchEmptyPayload(t *testing.T) {
	client := &fakeHTTPClient{body: `{"skills": []}`, status: 200}
	f := NewSkillsAPIFetcher(client)

	cfg := Source{ID: "market", Name: "Market", Type: TypeSkillsAPI, SourceURL: "https://example.com/api"}
	if _, err := f.Fetch(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
