// Package targets loads the list of pages to audit.
package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigNotFound is returned when the targets file does not exist.
	ErrConfigNotFound = errors.New("targets file not found")
	// ErrConfigMalformed is returned when the targets file cannot be decoded.
	ErrConfigMalformed = errors.New("targets file malformed")
)

// Group names, matching the array keys of the targets file.
const (
	// GroupMain holds the primary audit URLs, written to the output root.
	GroupMain = "urls"
	// GroupPartisans holds partner URLs, written to the partisans subdirectory.
	GroupPartisans = "partisans_urls"
)

// Group is an ordered set of URLs sharing one output directory.
type Group struct {
	Name string
	// Subdir is relative to the configured output directory; empty means the root.
	Subdir string
	URLs   []string
}

// List is the full set of targets for one run, in processing order.
type List struct {
	Groups []Group
}

// Len returns the number of URLs across all groups.
func (l List) Len() int {
	n := 0
	for _, g := range l.Groups {
		n += len(g.URLs)
	}
	return n
}

type file struct {
	URLs          []string `json:"urls" yaml:"urls"`
	PartisansURLs []string `json:"partisans_urls" yaml:"partisans_urls"`
}

// Load reads the targets file at path. partisansSubdir names the output
// subdirectory for the partisans_urls group.
func Load(path, partisansSubdir string) (List, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return List{}, fmt.Errorf("%w: path is empty", ErrConfigNotFound)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return List{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return List{}, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return List{}, fmt.Errorf("read targets file: %w", err)
	}

	parsed, err := parse(raw, filepath.Ext(path))
	if err != nil {
		return List{}, fmt.Errorf("%w: %s: %v", ErrConfigMalformed, path, err)
	}

	return List{Groups: []Group{
		{Name: GroupMain, URLs: clean(parsed.URLs)},
		{Name: GroupPartisans, Subdir: partisansSubdir, URLs: clean(parsed.PartisansURLs)},
	}}, nil
}

type unmarshalFn func([]byte, any) error

func parse(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "json", ext: ".json", fn: json.Unmarshal},
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
	}

	known := false
	for _, d := range decoders {
		if ext == d.ext {
			known = true
			break
		}
	}

	var errs []error
	for _, d := range decoders {
		if known && ext != d.ext {
			continue
		}
		var out file
		if err := d.fn(data, &out); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", d.name, err))
			continue
		}
		return out, nil
	}
	return file{}, errors.Join(errs...)
}

func clean(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
