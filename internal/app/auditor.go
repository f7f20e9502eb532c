package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bozzhik/meta-scraper/internal/config"
	"github.com/bozzhik/meta-scraper/internal/logger"
	"github.com/bozzhik/meta-scraper/internal/metadata"
	"github.com/bozzhik/meta-scraper/internal/report"
	"github.com/bozzhik/meta-scraper/internal/targets"
	"github.com/bozzhik/meta-scraper/pkg/httpclient"
	"github.com/bozzhik/meta-scraper/pkg/publishers"
)

// Auditor runs one pass over the target list: fetch each page, write its
// report, announce it. URLs are processed strictly one after another.
type Auditor struct {
	targets   targets.List
	outputDir string
	fetcher   MetadataFetcher
	writer    ReportWriter
	publisher EventPublisher
	log       logger.Logger
}

// summary counts per-URL outcomes of a run.
type summary struct {
	written      int
	fetchFailed  int
	writeFailed  int
	notifyFailed int
}

// NewAuditor loads the target list and wires the pipeline from config.
// Target and publisher configuration errors are returned before any network activity.
func NewAuditor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Auditor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	list, err := targets.Load(cfg.TargetsFile, cfg.PartisansSubdir)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	groupSizes := make(map[string]int, len(list.Groups))
	for _, g := range list.Groups {
		groupSizes[g.Name] = len(g.URLs)
	}
	log.InfoObj("targets loaded", "targets_meta", map[string]any{
		"file":   cfg.TargetsFile,
		"total":  list.Len(),
		"groups": groupSizes,
	})

	var publisher EventPublisher
	if cfg.PublishersFile != "" {
		pubCfgs, err := publishers.LoadConfigs(cfg.PublishersFile)
		if err != nil {
			return nil, fmt.Errorf("load publishers: %w", err)
		}
		pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubCfgs, log)
		if err != nil {
			return nil, fmt.Errorf("build publishers: %w", err)
		}
		summaries := make([]map[string]string, 0, len(pubCfgs))
		for _, pc := range pubCfgs {
			summaries = append(summaries, map[string]string{"id": pc.ID, "type": pc.Type})
		}
		log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
			"count":      len(summaries),
			"publishers": summaries,
		})
		publisher = publishers.NewFanout(pubs)
	}

	client := httpclient.NewRestyClient(cfg.RequestTimeout, cfg.UserAgent)
	return newAuditor(
		list,
		cfg.OutputDir,
		metadata.NewFetcher(client, cfg.MaxBodyBytes),
		report.NewWriter(time.Now()),
		publisher,
		log,
	), nil
}

func newAuditor(list targets.List, outputDir string, fetcher MetadataFetcher, writer ReportWriter, publisher EventPublisher, log logger.Logger) *Auditor {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Auditor{
		targets:   list,
		outputDir: outputDir,
		fetcher:   fetcher,
		writer:    writer,
		publisher: publisher,
		log:       log,
	}
}

// Run processes every target once. Per-URL failures are logged and skipped;
// Run itself only fails when the auditor is not initialized.
func (a *Auditor) Run(ctx context.Context) error {
	if a == nil || a.fetcher == nil || a.writer == nil {
		return fmt.Errorf("auditor is not initialized")
	}
	defer a.closePublisher()

	if a.targets.Len() == 0 {
		a.log.WarnObj("no urls found in targets file; nothing to do", "groups", len(a.targets.Groups))
		return nil
	}

	start := time.Now()
	var sum summary
	for _, g := range a.targets.Groups {
		if len(g.URLs) == 0 {
			continue
		}
		dir := filepath.Join(a.outputDir, g.Subdir)
		a.log.InfoObj("group started", "group_meta", map[string]any{
			"group":      g.Name,
			"urls":       len(g.URLs),
			"output_dir": dir,
		})
		for _, u := range g.URLs {
			a.process(ctx, g.Name, dir, u, &sum)
		}
	}

	a.log.InfoObj("run completed", "run_summary", map[string]any{
		"written":       sum.written,
		"fetch_failed":  sum.fetchFailed,
		"write_failed":  sum.writeFailed,
		"notify_failed": sum.notifyFailed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

func (a *Auditor) process(ctx context.Context, group, dir, rawURL string, sum *summary) {
	a.log.DebugObj("fetching metadata", "url", rawURL)

	meta, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		sum.fetchFailed++
		a.log.ErrorObj("fetch metadata failed", "fetch_error", map[string]any{
			"url":   rawURL,
			"error": err.Error(),
		})
		a.log.WarnObj("skipping url: unable to fetch metadata (url might be invalid or inaccessible)", "url", rawURL)
		return
	}

	path, err := a.writer.Write(dir, meta)
	if err != nil {
		sum.writeFailed++
		a.log.ErrorObj("write report failed", "write_error", map[string]any{
			"url":   rawURL,
			"error": err.Error(),
		})
		return
	}
	sum.written++
	a.log.InfoObj("report saved", "report", map[string]any{
		"url":  rawURL,
		"path": path,
	})

	if a.publisher == nil || a.publisher.Size() == 0 {
		return
	}
	if _, err := a.publisher.Publish(ctx, publishers.NewEvent(group, path, meta)); err != nil {
		sum.notifyFailed++
		a.log.WarnObj("report notification failed", "notify_error", map[string]any{
			"url":   rawURL,
			"error": err.Error(),
		})
	}
}

func (a *Auditor) closePublisher() {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Close(); err != nil {
		a.log.ErrorObj("publisher close failed", "error", err)
	}
}
