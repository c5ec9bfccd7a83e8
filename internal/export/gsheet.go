package export

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/app"
	"github.com/shrimpsizemoose/rollcall/internal/models"
)

const defaultStartCell = "A1"

var header = []interface{}{"Date", "Time", "Section", "Total", "Present", "Absent", "Percentage"}

type snapshotLoader interface {
	Load(ctx context.Context, name string) (*models.Snapshot, error)
}

type valuesWriter interface {
	Update(ctx context.Context, spreadsheetID, writeRange string, values [][]interface{}) error
}

type sheetsWriter struct {
	service *sheets.Service
}

func (w *sheetsWriter) Update(ctx context.Context, spreadsheetID, writeRange string, values [][]interface{}) error {
	_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, writeRange,
		&sheets.ValueRange{Values: values}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

type GSheetExporter struct {
	config      *app.GSheetConfig
	store       snapshotLoader
	storageName string
	writer      valuesWriter
	scheduler   *gocron.Scheduler
	now         func() time.Time
}

// NewGSheetExporter schedules Export on the configured cron expression and
// starts the scheduler.
func NewGSheetExporter(config *app.Config, store snapshotLoader) (*GSheetExporter, error) {
	cfg := config.GSheet
	if cfg.SheetID == "" || cfg.SheetName == "" {
		return nil, fmt.Errorf("gsheet sheet_id and sheet_name must be set")
	}

	svc, err := sheets.NewService(context.Background(), option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	exporter := &GSheetExporter{
		config:      &cfg,
		store:       store,
		storageName: config.Storage.Name,
		writer:      &sheetsWriter{service: svc},
		scheduler:   gocron.NewScheduler(time.UTC),
		now:         time.Now,
	}

	_, err = exporter.scheduler.Cron(cfg.Schedule).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := exporter.Export(ctx); err != nil {
			logger.Error.Printf("Export failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule export: %w", err)
	}

	exporter.scheduler.StartAsync()
	return exporter, nil
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}

// Export writes every completed session from the persisted snapshot and
// stamps the update time.
func (e *GSheetExporter) Export(ctx context.Context) error {
	snapshot, err := e.store.Load(ctx, e.storageName)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", e.storageName, err)
	}
	if snapshot == nil {
		logger.Debug.Printf("Nothing stored under %s yet", e.storageName)
		return nil
	}

	startCell := e.config.StartCell
	if startCell == "" {
		startCell = defaultStartCell
	}

	rows := append([][]interface{}{header}, sessionRows(snapshot.Sessions)...)
	writeRange := fmt.Sprintf("%s!%s", e.config.SheetName, startCell)
	if err := e.writer.Update(ctx, e.config.SheetID, writeRange, rows); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	logger.Info.Printf("Exported %d sessions to %s", len(snapshot.Sessions), writeRange)

	if e.config.TimestampRange == "" {
		return nil
	}

	timestamp := fmt.Sprintf("UPD: %s", e.now().Format("2 January 15:04"))
	if len(e.config.EmojiVariants) > 0 {
		timestamp += " " + e.config.EmojiVariants[rand.Intn(len(e.config.EmojiVariants))]
	}

	updateRange := fmt.Sprintf("%s!%s", e.config.SheetName, e.config.TimestampRange)
	return e.writer.Update(ctx, e.config.SheetID, updateRange, [][]interface{}{{timestamp}})
}

func sessionRows(sessions []models.AttendanceSession) [][]interface{} {
	rows := make([][]interface{}, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []interface{}{
			s.Date,
			s.Time,
			s.Section,
			s.TotalStudents,
			s.PresentCount,
			s.AbsentCount,
			s.Percentage(),
		})
	}
	return rows
}
