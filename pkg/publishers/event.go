package publishers

import (
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

// Event is the digest-article payload delivered downstream.
type Event struct {
	SkillName     string    `json:"skill_name"`
	SkillURL      string    `json:"skill_url"`
	Category      string    `json:"category"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ContentFormat string    `json:"content_format"`
	Author        string    `json:"author,omitempty"`
	PublishedAt   time.Time `json:"published_at"`
}

// NewEvent constructs an Event for the given skill and rendered article.
func NewEvent(skill domain.Skill, title, content, author string) Event {
	return Event{
		SkillName:     skill.Name,
		SkillURL:      skill.URL,
		Category:      skill.Category,
		Title:         title,
		Content:       content,
		ContentFormat: "markdown",
		Author:        author,
		PublishedAt:   time.Now().UTC(),
	}
}
