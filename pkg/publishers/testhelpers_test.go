package publishers

import "github.com/bozzhik/meta-scraper/internal/domain"

func sampleEvent() Event {
	return NewEvent("urls", "output/20261019_example.com.md", domain.Metadata{
		URL:   "https://example.com",
		Title: domain.Present("Example Domain"),
	})
}
