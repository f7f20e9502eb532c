package report

import (
	"bufio"
	"bytes"
	"crypto/sha1" //nolint:gosec // non-cryptographic filename suffix
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bozzhik/meta-scraper/internal/domain"
)

// ErrWriteFailed marks any failure to persist a report.
var ErrWriteFailed = errors.New("write failed")

// WriteError carries the URL and target path of a failed write.
type WriteError struct {
	URL  string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write report for %s to %s: %v", e.URL, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWriteFailed, e.Err} }

const (
	dateLayout    = "20060102"
	extension     = ".md"
	headingPrefix = "# Metadata for "

	// maxStemBytes bounds the sanitized part of a filename so that the
	// name, a collision suffix and the temp-file decoration stay under
	// the usual 255-byte limit.
	maxStemBytes = 180
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
)

// Writer renders metadata records into dated Markdown files.
type Writer struct {
	date string
	// claimed maps an output path to the URL that owns it for this run.
	claimed map[string]string
}

// NewWriter returns a writer stamping every file with now's date.
func NewWriter(now time.Time) *Writer {
	return &Writer{
		date:    now.Format(dateLayout),
		claimed: make(map[string]string),
	}
}

// Write renders meta into dir, creating dir when needed, and returns the path written.
func (w *Writer) Write(dir string, meta domain.Metadata) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &WriteError{URL: meta.URL, Path: dir, Err: fmt.Errorf("create output directory: %w", err)}
	}

	path := w.pathFor(dir, meta.URL)
	if err := writeAtomic(path, Render(meta)); err != nil {
		return "", &WriteError{URL: meta.URL, Path: path, Err: err}
	}
	w.claimed[path] = meta.URL
	return path, nil
}

// pathFor resolves the output path for rawURL. The same URL always maps to
// the same file; a different URL that sanitizes to an occupied name gets a
// hash suffix.
func (w *Writer) pathFor(dir, rawURL string) string {
	stem := w.date + "_" + stemFor(rawURL)
	path := filepath.Join(dir, stem+extension)

	if owner, ok := w.claimed[path]; ok {
		if owner == rawURL {
			return path
		}
	} else if owner, ok := headingOwner(path); !ok || owner == rawURL {
		return path
	}
	return filepath.Join(dir, stem+"_"+shortHash(rawURL)+extension)
}

// FileName returns the report filename for rawURL on the given day.
func FileName(day time.Time, rawURL string) string {
	return day.Format(dateLayout) + "_" + stemFor(rawURL) + extension
}

// stemFor is Sanitize capped at maxStemBytes. A cut stem carries the URL hash
// so long URLs sharing a prefix still map to distinct, stable names.
func stemFor(rawURL string) string {
	s := Sanitize(rawURL)
	if len(s) <= maxStemBytes {
		return s
	}
	return strings.TrimRight(s[:maxStemBytes], "_.") + "_" + shortHash(rawURL)
}

// Sanitize strips the scheme from rawURL and maps it to a filesystem-safe name.
func Sanitize(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	lower := strings.ToLower(s)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			s = s[len(scheme):]
			break
		}
	}
	s = unsafeFilenameChars.ReplaceAllString(s, "_")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		return "page"
	}
	return s
}

// Render formats meta as the Markdown report body.
func Render(meta domain.Metadata) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s%s\n\n", headingPrefix, meta.URL)
	fmt.Fprintf(&b, "**Title:** %s\n\n", meta.Title.Display())
	fmt.Fprintf(&b, "**Description:** %s\n\n", meta.Description.Display())
	fmt.Fprintf(&b, "**Keywords:** %s\n\n", meta.Keywords.Display())
	fmt.Fprintf(&b, "**Author:** %s\n", meta.Author.Display())
	return b.Bytes()
}

// headingOwner reads the URL from the heading of an existing report.
func headingOwner(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return "", false
	}
	return strings.CutPrefix(sc.Text(), headingPrefix)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	committed = true
	return nil
}

func shortHash(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:4])
}
