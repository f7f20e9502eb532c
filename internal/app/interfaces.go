package app

import (
	"context"

	"github.com/bozzhik/meta-scraper/internal/domain"
	"github.com/bozzhik/meta-scraper/pkg/publishers"
)

// MetadataFetcher retrieves one page and extracts its metadata.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) (domain.Metadata, error)
}

// ReportWriter persists one metadata record under dir.
type ReportWriter interface {
	Write(dir string, meta domain.Metadata) (string, error)
}

// EventPublisher announces written reports downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}
