package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
)

// ChartSource computes a course popularity chart. app.Service implements it.
type ChartSource interface {
	AggregateScores(course string, opts ranking.Options) ([]ranking.Score, error)
}

// SheetWriter overwrites a range of a spreadsheet.
type SheetWriter interface {
	Clear(ctx context.Context, sheetID, rng string) error
	Write(ctx context.Context, sheetID, rng string, values [][]interface{}) error
}

type sheetsWriter struct {
	svc *sheets.Service
}

func NewSheetsWriter(ctx context.Context, credentialsPath string) (SheetWriter, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &sheetsWriter{svc: svc}, nil
}

func (w *sheetsWriter) Clear(ctx context.Context, sheetID, rng string) error {
	_, err := w.svc.Spreadsheets.Values.Clear(sheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (w *sheetsWriter) Write(ctx context.Context, sheetID, rng string, values [][]interface{}) error {
	_, err := w.svc.Spreadsheets.Values.Update(sheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

type GSheetExporter struct {
	charts    ChartSource
	scheduler *gocron.Scheduler
	writers   map[string]SheetWriter
}

// NewGSheetExporter schedules one export job per configured sheet. Jobs do
// not run until Start is called.
func NewGSheetExporter(config *app.Config, charts ChartSource) (*GSheetExporter, error) {
	ctx := context.Background()
	e := &GSheetExporter{
		charts:    charts,
		scheduler: gocron.NewScheduler(time.UTC),
		writers:   make(map[string]SheetWriter),
	}

	for course, configs := range config.GSheet {
		for _, cfg := range configs {
			writer, ok := e.writers[cfg.CredentialsPath]
			if !ok {
				var err error
				writer, err = NewSheetsWriter(ctx, cfg.CredentialsPath)
				if err != nil {
					return nil, err
				}
				e.writers[cfg.CredentialsPath] = writer
			}

			_, err := e.scheduler.Cron(cfg.Schedule).Do(func() {
				if err := e.Export(context.Background(), writer, course, cfg); err != nil {
					logger.Error.Printf("Export of %s to %s failed: %v", course, cfg.SheetID, err)
				}
			})
			if err != nil {
				return nil, fmt.Errorf("failed to schedule export for %s: %w", course, err)
			}
			logger.Info.Printf("Scheduled %s export to %s (%s)", course, cfg.SheetID, cfg.Schedule)
		}
	}

	return e, nil
}

func (e *GSheetExporter) Start() {
	e.scheduler.StartAsync()
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}

// Export rewrites the chart range with the current popularity chart and
// stamps the update time.
func (e *GSheetExporter) Export(ctx context.Context, writer SheetWriter, course string, cfg app.GSheetConfig) error {
	scores, err := e.charts.AggregateScores(course, ranking.Options{Limit: cfg.Limit})
	if err != nil {
		return fmt.Errorf("failed to compute chart: %w", err)
	}

	chartRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.ChartRange)
	if err := writer.Clear(ctx, cfg.SheetID, chartRange); err != nil {
		return fmt.Errorf("failed to clear chart: %w", err)
	}
	if len(scores) > 0 {
		if err := writer.Write(ctx, cfg.SheetID, chartRange, chartRows(scores)); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
	}

	if cfg.TimestampRange != "" {
		stamp := fmt.Sprintf("UPD: %s", time.Now().UTC().Format("2 January 15:04 MST"))
		stampRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.TimestampRange)
		if err := writer.Write(ctx, cfg.SheetID, stampRange, [][]interface{}{{stamp}}); err != nil {
			return fmt.Errorf("failed to write timestamp: %w", err)
		}
	}

	logger.Debug.Printf("Exported %d rows of %s chart", len(scores), course)
	return nil
}

func chartRows(scores []ranking.Score) [][]interface{} {
	rows := make([][]interface{}, 0, len(scores))
	for i, s := range scores {
		rows = append(rows, []interface{}{i + 1, s.Name, s.Tutor, s.Score})
	}
	return rows
}
