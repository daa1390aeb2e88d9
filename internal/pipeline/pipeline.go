// Package pipeline runs a full batch: ingest, scrub, map, group, classify,
// balance, analyze, report, log.
package pipeline

import (
	"fmt"
	"log"

	"github.com/proliance-rcm/phil/internal/analytics"
	"github.com/proliance-rcm/phil/internal/balance"
	"github.com/proliance-rcm/phil/internal/classify"
	"github.com/proliance-rcm/phil/internal/config"
	"github.com/proliance-rcm/phil/internal/grouping"
	"github.com/proliance-rcm/phil/internal/ingest"
	"github.com/proliance-rcm/phil/internal/mapping"
	"github.com/proliance-rcm/phil/internal/model"
	"github.com/proliance-rcm/phil/internal/report"
	"github.com/proliance-rcm/phil/internal/runlog"
)

// Results collects everything one batch run produced.
type Results struct {
	RunID        string
	Payer        string
	CombineStats ingest.CombineStats
	ScrubStats   ingest.ScrubStats
	Hierarchy    *model.Hierarchy
	Balance      *balance.Sheet
	Analytics    *analytics.Results
	ReportPaths  []string
}

// Run executes the whole batch against the configured paths.
func Run(cfg *config.Config) (*Results, error) {
	entry := runlog.NewEntry(cfg.Batch.DefaultPayer)
	res, err := run(cfg, &entry)

	if err != nil {
		entry.Status = "failed"
		entry.Note = err.Error()
	} else {
		entry.Status = "ok"
		res.RunID = entry.RunID
	}
	if logErr := runlog.Append(cfg.Paths.LogDir, []runlog.Entry{entry}); logErr != nil {
		log.Printf("[pipeline] writing run log: %v", logErr)
	}
	return res, err
}

func run(cfg *config.Config, entry *runlog.Entry) (*Results, error) {
	log.Printf("[pipeline] reading exports from %s", cfg.Paths.InputDir)
	rows, combineStats, err := ingest.Combine(cfg.Paths.InputDir, ingest.DefaultRegistry(), cfg.Batch.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("ingesting exports: %w", err)
	}
	entry.RowsIn = combineStats.TotalRows

	rows, scrubStats := ingest.Scrub(rows)

	maps, err := mapping.Load(cfg.Paths.MappingFile)
	if err != nil {
		return nil, fmt.Errorf("loading mapping workbook: %w", err)
	}
	maps.Annotate(rows)

	grouper := grouping.Grouper{DefaultPayer: cfg.Batch.DefaultPayer}
	h := grouper.Build(rows)
	entry.EFTs = len(h.Order)
	entry.Excluded = len(h.Excluded)

	classifier := classify.New(classify.NewServicePairs(cfg.PairsTable()))
	classifier.TagEncounters(h)
	classify.PaymentStatuses(h)

	sheet := balance.Evaluate(h)
	results := analytics.Analyze(h)

	payer := batchPayer(h, cfg.Batch.DefaultPayer)
	entry.Payer = payer

	res := &Results{
		Payer:        payer,
		CombineStats: combineStats,
		ScrubStats:   scrubStats,
		Hierarchy:    h,
		Balance:      sheet,
		Analytics:    results,
	}

	eftsPath, err := report.Write(cfg.Paths.OutputDir, payer+"_efts.md",
		report.EFTsMarkdown(payer, h))
	if err != nil {
		return nil, err
	}
	analyticsPath, err := report.Write(cfg.Paths.OutputDir, payer+"_analytics.md",
		report.AnalyticsMarkdown(payer, h, results, sheet))
	if err != nil {
		return nil, err
	}
	res.ReportPaths = []string{eftsPath, analyticsPath}

	log.Printf("[pipeline] done: %d EFTs, %d excluded, reports in %s",
		len(h.Order), len(h.Excluded), cfg.Paths.OutputDir)
	return res, nil
}

// batchPayer labels the run with the first EFT's payer. Batches are
// processed one payer folder at a time.
func batchPayer(h *model.Hierarchy, fallback string) string {
	for _, eftNum := range h.Order {
		if p := h.EFTs[eftNum].Payer; p != "" {
			return p
		}
	}
	return fallback
}
