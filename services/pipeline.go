package services

import (
	"time"

	"listing-etl/models"
	"listing-etl/storage"
	"listing-etl/utils"
)

// Pipeline runs the listing ETL: load, clean, drop incomplete rows,
// normalize, filter, shape, then write to every sink in order.
// A Pipeline keeps no state between runs.
type Pipeline struct {
	logger     *utils.Logger
	reader     storage.TableReader
	cleaner    *Cleaner
	normalizer *Normalizer
	criteria   Criteria
	sinks      []storage.TableWriter
}

// PipelineOptions configures NewPipeline. Zero values fall back to the
// defaults of each stage.
type PipelineOptions struct {
	Reader       storage.TableReader
	Criteria     Criteria
	DateLayout   string
	PriceDivisor float64
}

// NewPipeline assembles the stages. The CSV sink is always first; extra sinks
// (databases) run after it.
func NewPipeline(logger *utils.Logger, opts PipelineOptions, sinks ...storage.TableWriter) *Pipeline {
	reader := opts.Reader
	if reader == nil {
		reader = storage.NewJSONReader()
	}
	return &Pipeline{
		logger:     logger,
		reader:     reader,
		cleaner:    NewCleaner(logger, opts.DateLayout),
		normalizer: NewNormalizer(opts.PriceDivisor),
		criteria:   opts.Criteria,
		sinks:      sinks,
	}
}

// Run executes every stage on the file at inputPath and writes the result to
// outputPath as CSV. The first failing stage aborts the run; its error is one
// of *models.LoadError, *models.SchemaError or *models.WriteError.
func (p *Pipeline) Run(inputPath, outputPath string) (*models.Table, error) {
	start := time.Now()
	table, err := p.reader.Read(inputPath)
	if err != nil {
		return nil, err
	}
	p.logger.Stage("load", table.Len(), time.Since(start))

	table = p.timed("clean", func() *models.Table { return p.cleaner.Clean(table) })
	table = p.timed("drop-incomplete", func() *models.Table { return DropIncomplete(table) })
	table = p.timed("normalize", func() *models.Table { return p.normalizer.Normalize(table) })
	table = p.timed("filter", func() *models.Table { return Filter(table, p.criteria) })

	table, err = Shape(table)
	if err != nil {
		return nil, err
	}

	csvSink := storage.NewCSVWriter(outputPath)
	sinks := append([]storage.TableWriter{csvSink}, p.sinks...)
	for _, sink := range sinks {
		if err := sink.Write(table); err != nil {
			return nil, err
		}
	}

	p.logger.Info("[pipeline] Wrote %d listings to %s in %v", table.Len(), csvSink.Path(), time.Since(start).Round(time.Millisecond))
	return table, nil
}

func (p *Pipeline) timed(stage string, fn func() *models.Table) *models.Table {
	start := time.Now()
	t := fn()
	p.logger.Stage(stage, t.Len(), time.Since(start))
	return t
}
