package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"perf-graphs/internal/config"
	"perf-graphs/internal/discovery"
	"perf-graphs/internal/domain"
	"perf-graphs/internal/render"
	"perf-graphs/internal/util"
	"perf-graphs/internal/writer"
)

// Summary counts what a run produced.
type Summary struct {
	Endpoints int
	Charts    int
	Skipped   int
	Failed    int
	// Missing counts absent candidate columns across every chart.
	Missing int
	Outputs []string
}

type Pipeline struct {
	cfg      config.Config
	store    domain.MetricStore
	renderer *render.Renderer
	writer   *writer.Writer
	logger   *util.MetricsLogger
}

func New(cfg config.Config, store domain.MetricStore, renderer *render.Renderer, w *writer.Writer, logger *util.MetricsLogger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		renderer: renderer,
		writer:   w,
		logger:   logger,
	}
}

// Run processes the given modes in order, one file and one chart at a time.
// A file that fails is logged and its error collected; the remaining files
// are still processed.
func (p *Pipeline) Run(ctx context.Context, modes ...domain.Mode) (Summary, error) {
	var (
		summary Summary
		errs    error
	)

	for _, mode := range modes {
		sources, err := p.discover(mode)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		for _, source := range sources {
			if err := ctx.Err(); err != nil {
				return summary, multierr.Append(errs, err)
			}

			if err := p.processSource(ctx, source, &summary); err != nil {
				p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Failed", source.Path, "-", err)
				summary.Failed++
				errs = multierr.Append(errs, err)
			}
		}

		p.logger.LogEvent(util.LOG_LEVEL_INFO, fmt.Sprintf("%s%s graphs -> %s/", strings.ToUpper(mode.Name[:1]), mode.Name[1:], p.writer.ModeDir(mode)))
	}
	return summary, errs
}

func (p *Pipeline) discover(mode domain.Mode) ([]domain.Source, error) {
	if err := p.writer.EnsureModeDir(mode); err != nil {
		return nil, err
	}

	switch mode.Name {
	case domain.ModeInteroperability.Name:
		dir := filepath.Join(p.cfg.CSVRoot, p.cfg.InteroperabilityDir)
		p.logger.LogEvent(util.LOG_LEVEL_INFO, "=== Processing interoperability CSV files ===")

		sources, err := discovery.Interoperability(dir)
		if err != nil {
			return nil, err
		}
		if len(sources) == 0 {
			p.logger.LogEvent(util.LOG_LEVEL_WARN, "No interoperability CSV files found in", dir)
			return nil, nil
		}

		names := make([]string, len(sources))
		for i, s := range sources {
			names[i] = filepath.Base(s.Path)
		}
		p.logger.LogEvent(util.LOG_LEVEL_INFO, "Found:", names)
		return sources, nil

	case domain.ModeBasic.Name:
		p.logger.LogEvent(util.LOG_LEVEL_INFO, "=== Processing basic endpoint CSV files ===")

		sources, missing, err := discovery.Basic(p.cfg.CSVRoot, p.cfg.BasicEndpoints)
		if err != nil {
			return nil, err
		}
		for _, path := range missing {
			p.logger.LogEvent(util.LOG_LEVEL_WARN, "Missing CSV:", path)
		}
		return sources, nil

	default:
		return nil, fmt.Errorf("unknown mode %q", mode.Name)
	}
}

// processSource renders every chart of one file before saving any of them,
// so a file that fails leaves nothing behind.
func (p *Pipeline) processSource(ctx context.Context, source domain.Source, summary *Summary) error {
	p.logger.LogEvent(util.LOG_LEVEL_INFO, "Processing", source.Path, "->", p.writer.EndpointDir(source.Mode, source.Endpoint)+"/")

	table, err := p.store.Load(ctx, source.Path)
	if err != nil {
		return err
	}
	defer func() {
		// released even when ctx is cancelled
		if err := table.Release(context.Background()); err != nil {
			p.logger.LogEvent(util.LOG_LEVEL_WARN, "Release failed for", source.Path, "-", err)
		}
	}()

	type rendered struct {
		category domain.Category
		png      []byte
	}

	var (
		charts  []rendered
		missing int
		skipped int
	)
	for _, category := range domain.Categories {
		c, err := render.Build(ctx, table, source, category)
		if err != nil {
			return err
		}

		for _, column := range c.Missing {
			p.logger.LogEvent(util.LOG_LEVEL_WARN, "Missing column:", column)
		}
		missing += len(c.Missing)

		if c.Empty() && p.cfg.SkipEmptyCharts {
			p.logger.LogEvent(util.LOG_LEVEL_WARN, "Skipping empty chart:", p.writer.Path(source.Mode, source.Endpoint, category))
			skipped++
			continue
		}

		png, err := p.renderer.RenderBytes(c)
		if err != nil {
			return err
		}
		charts = append(charts, rendered{category: category, png: png})
	}

	var saved []string
	for _, r := range charts {
		path, err := p.writer.Save(source.Mode, source.Endpoint, r.category, r.png)
		if err != nil {
			return multierr.Append(err, p.writer.Remove(saved...))
		}
		p.logger.LogEvent(util.LOG_LEVEL_DEBUG, "Wrote", path)
		saved = append(saved, path)
	}

	summary.Endpoints++
	summary.Charts += len(saved)
	summary.Missing += missing
	summary.Skipped += skipped
	summary.Outputs = append(summary.Outputs, saved...)
	p.logger.LogEvent(util.LOG_LEVEL_INFO, "Saved graphs for", source.Endpoint)
	return nil
}
