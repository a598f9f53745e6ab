package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-news-briefing/internal/config"
	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
	"github.com/samvad-hq/samvad-news-briefing/internal/logger"
	"github.com/samvad-hq/samvad-news-briefing/internal/plan"
	"github.com/samvad-hq/samvad-news-briefing/internal/storage"
	"github.com/samvad-hq/samvad-news-briefing/pkg/curation"
	"github.com/samvad-hq/samvad-news-briefing/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-briefing/pkg/publishers"
	"github.com/samvad-hq/samvad-news-briefing/pkg/report"
	"github.com/samvad-hq/samvad-news-briefing/pkg/sources"
)

// Briefing is one collection run: collect, curate per group, deliver in order,
// then mirror and archive what was delivered.
type Briefing struct {
	plan      plan.Plan
	collector *sources.Collector
	engine    *curation.Engine
	sender    *report.Sender
	fanout    *publishers.Fanout
	store     storage.Store
	runID     string
	log       logger.Logger
}

// RunSummary reports what a run produced.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	Candidates int            `json:"candidates"`
	Curated    map[string]int `json:"curated"`
	Delivered  int            `json:"delivered"`
	Mirrored   int            `json:"mirrored"`
}

// NewBriefing wires a run from config. Only configuration problems fail here;
// nothing touches the network before Run.
func NewBriefing(ctx context.Context, cfg *config.Config, log logger.Logger) (*Briefing, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := loadPlan(cfg.SourcesFile, log)
	if err != nil {
		return nil, err
	}

	planner := sources.NewPlanner("", p.RegionTable())
	opts := p.CollectorOptions()
	opts.SectionHeaders = sources.BrowserHeaders(cfg.ScrapeUserAgent)
	feedHeaders := map[string]string{"User-Agent": cfg.ScrapeUserAgent}
	collector := sources.NewCollector(
		planner,
		sources.NewFeedFetcher(httpclient.NewRestyClient(cfg.FetchTimeout).WithBodyLimit(sources.MaxPageBytes), feedHeaders),
		sources.NewAnchorScraper(httpclient.NewRestyClient(cfg.ScrapeTimeout).WithBodyLimit(sources.MaxPageBytes)),
		opts,
		log,
	)

	gemini := curation.NewGeminiClient(httpclient.NewRestyClient(cfg.ModelTimeout), cfg.GeminiBaseURL, cfg.GeminiAPIKey)
	engine := curation.NewEngine(gemini, curation.NewModelSelector(gemini, cfg.GeminiModel, nil, log), log)

	sender := report.NewSender(
		httpclient.NewRestyClient(cfg.WebhookTimeout),
		cfg.DiscordWebhookURL,
		cfg.DeliveryDelay,
		report.NewAssembler(cfg.ReportFooter, nil),
		log,
	)

	fanout, err := buildMirrors(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		ReportTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"report_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Briefing{
		plan:      p,
		collector: collector,
		engine:    engine,
		sender:    sender,
		fanout:    fanout,
		store:     store,
		runID:     uuid.NewString(),
		log:       log,
	}, nil
}

func loadPlan(path string, log logger.Logger) (plan.Plan, error) {
	p, err := plan.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.WarnObj("sources file not found; using built-in plan", "sources_file", path)
		p = plan.Default()
	case err != nil:
		return plan.Plan{}, fmt.Errorf("load sources plan: %w", err)
	}

	groupIDs := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		groupIDs = append(groupIDs, g.ID)
	}
	log.InfoObj("sources plan loaded", "plan_meta", map[string]any{
		"feeds":    len(p.Feeds),
		"sections": len(p.Sections.Items),
		"groups":   groupIDs,
	})
	return p, nil
}

func buildMirrors(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	reg, err := publishers.LoadRegistry(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.InfoObj("publishers file not found; report mirrors disabled", "publishers_file", path)
		return publishers.NewFanout(nil), nil
	case err != nil:
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Run performs the whole batch pass. Source, model and delivery failures are
// logged and absorbed; the returned error only signals a misconfigured Briefing.
func (b *Briefing) Run(ctx context.Context) (RunSummary, error) {
	if b == nil || b.collector == nil || b.engine == nil || b.sender == nil {
		return RunSummary{}, fmt.Errorf("briefing is not initialized")
	}
	defer b.close()

	start := time.Now()
	summary := RunSummary{RunID: b.runID, Curated: make(map[string]int, len(b.plan.Groups))}
	b.log.InfoObj("briefing run started", "run_meta", map[string]any{
		"run_id": b.runID,
		"groups": len(b.plan.Groups),
	})

	candidates := b.collect(ctx)
	summary.Candidates = candidates.Len()
	if candidates.Len() == 0 {
		b.log.WarnObj("nothing collected; skipping curation and delivery", "run_meta", map[string]any{
			"run_id": b.runID,
		})
		return summary, nil
	}

	parts := candidates.Partition(b.plan.Partitions())
	groups := make([]report.Group, 0, len(b.plan.Groups))
	for _, g := range b.plan.Groups {
		res := b.engine.Curate(ctx, parts[g.ID], g.Spec())
		summary.Curated[g.ID] = len(res.Items)
		groups = append(groups, report.Group{
			ID:          g.ID,
			Title:       g.Title,
			Description: g.Description,
			Color:       g.Color,
			Model:       res.Model,
			Items:       res.Items,
		})
	}

	if total(summary.Curated) == 0 {
		b.log.WarnObj("no curated items in any group; nothing to deliver", "run_meta", map[string]any{
			"run_id":     b.runID,
			"candidates": summary.Candidates,
			"partitions": partitionSizes(parts),
		})
		return summary, nil
	}

	delivery := b.sender.AssembleAndSend(ctx, groups)
	for _, o := range delivery.Delivered() {
		summary.Delivered++
		if b.mirror(ctx, o) {
			summary.Mirrored++
		}
		b.archive(o)
	}

	b.log.InfoObj("briefing run completed", "run_meta", map[string]any{
		"run_id":     b.runID,
		"candidates": summary.Candidates,
		"curated":    summary.Curated,
		"delivered":  summary.Delivered,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return summary, nil
}

// collect runs every feed then every section through one collector so dedup spans the run.
func (b *Briefing) collect(ctx context.Context) *domain.CandidateSet {
	set := domain.NewCandidateSet()
	for _, f := range b.plan.Feeds {
		added := set.AddAll(b.collector.Collect(ctx, f.Queries, f.Regions, f.ParsedCategory()))
		b.log.InfoObj("feed collected", "collect_result", map[string]any{
			"feed":  f.ID,
			"added": added,
		})
	}
	if len(b.plan.Sections.Items) > 0 {
		added := set.AddAll(b.collector.CollectSections(ctx, b.plan.Sections.Items))
		b.log.InfoObj("sections collected", "collect_result", map[string]any{
			"sections": len(b.plan.Sections.Items),
			"added":    added,
		})
	}
	return set
}

func (b *Briefing) mirror(ctx context.Context, o report.Outcome) bool {
	if b.fanout.Size() == 0 {
		return false
	}
	evt := publishers.NewReportEvent(b.runID, o.Group.ID, o.Payload.Embeds[0].Title, o.Group.Model, o.Group.Items)
	n, err := b.fanout.Publish(ctx, evt)
	if err != nil {
		b.log.WarnObj("report mirror failed", "mirror_error", map[string]any{
			"group":     o.Group.ID,
			"succeeded": n,
			"error":     fmt.Errorf("%w: %v", domain.ErrDelivery, err).Error(),
		})
	}
	return n > 0
}

func (b *Briefing) archive(o report.Outcome) {
	if b.store == nil {
		return
	}
	raw, err := json.Marshal(o.Payload)
	if err == nil {
		err = b.store.SaveReport(b.runID, o.Group.ID, raw)
	}
	if err != nil {
		b.log.WarnObj("report archive failed", "archive_error", map[string]any{
			"group": o.Group.ID,
			"error": err.Error(),
		})
	}
}

// close releases mirrors and the archive, logging any errors encountered.
func (b *Briefing) close() {
	if err := b.fanout.Close(); err != nil {
		b.log.ErrorObj("publishers close failed", "error", err)
	}
	if b.store == nil {
		return
	}
	if err := b.store.Close(); err != nil {
		b.log.ErrorObj("storage close failed", "error", err)
	}
}

func total(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func partitionSizes(parts map[string][]domain.NewsItem) map[string]int {
	out := make(map[string]int, len(parts))
	for id, items := range parts {
		out[id] = len(items)
	}
	return out
}
