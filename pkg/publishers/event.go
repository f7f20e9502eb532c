package publishers

import (
	"time"

	"github.com/bozzhik/meta-scraper/internal/domain"
)

// Event announces a report written to disk.
type Event struct {
	URL         string    `json:"url"`
	Group       string    `json:"group"`
	ReportPath  string    `json:"report_path"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    string    `json:"keywords"`
	Author      string    `json:"author"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewEvent builds the event for a report written at path.
func NewEvent(group, path string, meta domain.Metadata) Event {
	return Event{
		URL:         meta.URL,
		Group:       group,
		ReportPath:  path,
		Title:       meta.Title.Display(),
		Description: meta.Description.Display(),
		Keywords:    meta.Keywords.Display(),
		Author:      meta.Author.Display(),
		GeneratedAt: time.Now().UTC(),
	}
}

func (e Event) attributes() map[string]string {
	return map[string]string{
		"url":   e.URL,
		"group": e.Group,
	}
}
