package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/bozzhik/meta-scraper/internal/domain"
)

const (
	metaDescription = "description"
	metaKeywords    = "keywords"
	metaAuthor      = "author"
)

// Parse extracts the title and the description, keywords and author meta tags
// from an HTML document. contentType may be empty; the charset is then sniffed
// from the document itself. An empty body yields a record with every field absent.
func Parse(body []byte, contentType string) (domain.Metadata, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if errors.Is(err, io.EOF) {
		return domain.Metadata{}, nil
	}
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("decode charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	meta := domain.Metadata{
		Title:       titleField(doc),
		Description: metaField(doc, metaDescription),
		Keywords:    metaField(doc, metaKeywords),
		Author:      metaField(doc, metaAuthor),
	}
	return meta, nil
}

func titleField(doc *goquery.Document) domain.Field {
	node := doc.Find("title").First()
	if node.Length() == 0 {
		return domain.Field{}
	}
	return field(node.Text())
}

// metaField returns the content of the first <meta> whose name matches,
// compared case-insensitively.
func metaField(doc *goquery.Document, name string) domain.Field {
	var out domain.Field
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		attr, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(attr), name) {
			return true
		}
		if content, ok := s.Attr("content"); ok {
			out = field(content)
		}
		return false
	})
	return out
}

func field(raw string) domain.Field {
	v := strings.TrimSpace(norm.NFKC.String(raw))
	if v == "" {
		return domain.Field{}
	}
	return domain.Present(v)
}
