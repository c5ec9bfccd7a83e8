package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/rollcall/internal/app"
	"github.com/shrimpsizemoose/rollcall/internal/models"
)

type fakeLoader struct {
	snapshot *models.Snapshot
	err      error
	names    []string
}

func (f *fakeLoader) Load(ctx context.Context, name string) (*models.Snapshot, error) {
	f.names = append(f.names, name)
	return f.snapshot, f.err
}

type update struct {
	sheetID string
	rng     string
	values  [][]interface{}
}

type fakeWriter struct {
	updates []update
	err     error
}

func (f *fakeWriter) Update(ctx context.Context, spreadsheetID, writeRange string, values [][]interface{}) error {
	f.updates = append(f.updates, update{spreadsheetID, writeRange, values})
	return f.err
}

func testSession(section string, present, absent int) models.AttendanceSession {
	s := models.AttendanceSession{
		ID:      "session_" + section,
		Date:    "01/15/2024",
		Time:    "9:00:00 AM",
		Section: section,
	}
	for i := 0; i < present; i++ {
		s.Records = append(s.Records, models.AttendanceRecord{Status: models.StatusPresent})
	}
	for i := 0; i < absent; i++ {
		s.Records = append(s.Records, models.AttendanceRecord{Status: models.StatusAbsent})
	}
	s.Recount()
	return s
}

func newTestExporter(loader *fakeLoader, writer *fakeWriter, cfg app.GSheetConfig) *GSheetExporter {
	return &GSheetExporter{
		config:      &cfg,
		store:       loader,
		storageName: "attendance-storage",
		writer:      writer,
		now:         func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) },
	}
}

func TestSessionRows(t *testing.T) {
	rows := sessionRows([]models.AttendanceSession{
		testSession("CS-A (CSE 2)", 2, 1),
		testSession("CS-B (CSE 2)", 0, 0),
	})

	require.Len(t, rows, 2)
	assert.Equal(t, []interface{}{"01/15/2024", "9:00:00 AM", "CS-A (CSE 2)", 3, 2, 1, 67}, rows[0])
	assert.Equal(t, []interface{}{"01/15/2024", "9:00:00 AM", "CS-B (CSE 2)", 0, 0, 0, 0}, rows[1])
}

func TestExport(t *testing.T) {
	loader := &fakeLoader{snapshot: &models.Snapshot{
		Sessions: []models.AttendanceSession{testSession("CS-A (CSE 2)", 1, 1)},
	}}
	writer := &fakeWriter{}
	exporter := newTestExporter(loader, writer, app.GSheetConfig{
		SheetID:        "sheet-1",
		SheetName:      "Attendance",
		StartCell:      "B2",
		TimestampRange: "J1",
		EmojiVariants:  []string{"🍩"},
	})

	require.NoError(t, exporter.Export(context.Background()))

	assert.Equal(t, []string{"attendance-storage"}, loader.names)
	require.Len(t, writer.updates, 2)

	sessions := writer.updates[0]
	assert.Equal(t, "sheet-1", sessions.sheetID)
	assert.Equal(t, "Attendance!B2", sessions.rng)
	require.Len(t, sessions.values, 2)
	assert.Equal(t, header, sessions.values[0])
	assert.Equal(t, 50, sessions.values[1][6])

	stamp := writer.updates[1]
	assert.Equal(t, "Attendance!J1", stamp.rng)
	assert.Equal(t, [][]interface{}{{"UPD: 15 January 10:30 🍩"}}, stamp.values)
}

func TestExportDefaults(t *testing.T) {
	loader := &fakeLoader{snapshot: &models.Snapshot{}}
	writer := &fakeWriter{}
	exporter := newTestExporter(loader, writer, app.GSheetConfig{SheetID: "sheet-1", SheetName: "Attendance"})

	require.NoError(t, exporter.Export(context.Background()))

	require.Len(t, writer.updates, 1, "no timestamp range configured")
	assert.Equal(t, "Attendance!A1", writer.updates[0].rng)
	assert.Equal(t, [][]interface{}{header}, writer.updates[0].values)
}

func TestExportNothingStored(t *testing.T) {
	writer := &fakeWriter{}
	exporter := newTestExporter(&fakeLoader{}, writer, app.GSheetConfig{SheetID: "sheet-1", SheetName: "Attendance"})

	require.NoError(t, exporter.Export(context.Background()))
	assert.Empty(t, writer.updates)
}

func TestExportErrors(t *testing.T) {
	exporter := newTestExporter(&fakeLoader{err: errors.New("db down")}, &fakeWriter{}, app.GSheetConfig{})
	assert.ErrorContains(t, exporter.Export(context.Background()), "db down")

	writer := &fakeWriter{err: errors.New("quota")}
	exporter = newTestExporter(&fakeLoader{snapshot: &models.Snapshot{}}, writer, app.GSheetConfig{SheetName: "S"})
	assert.ErrorContains(t, exporter.Export(context.Background()), "quota")
}
