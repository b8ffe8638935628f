package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"
	"github.com/plradhouane-dev/gmao/internal/scheduler"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fakes embed the repository interfaces so only the methods the
// scanner actually calls need bodies; anything else panics loudly.

type fakeScheduleRepo struct {
	repository.ScheduleRepository
	entries []model.ScheduleEntry
	calls   int
}

func (r *fakeScheduleRepo) ListDueBetween(_ context.Context, from, to time.Time) ([]model.ScheduleEntry, error) {
	r.calls++
	var out []model.ScheduleEntry
	for _, e := range r.entries {
		if e.Status == model.ScheduleStatusCompleted {
			continue
		}
		if e.DueDate.Before(from) || e.DueDate.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakePartRepo struct {
	repository.PartRepository
	parts []model.Part
}

func (r *fakePartRepo) ListLowStock(_ context.Context, threshold int) ([]model.Part, error) {
	var out []model.Part
	for _, p := range r.parts {
		if p.StockQuantity <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

type recordedNotification struct {
	subject string
	body    string
}

type recorderNotifier struct {
	sent []recordedNotification
}

func (n *recorderNotifier) Notify(_ context.Context, subject, body string) error {
	n.sent = append(n.sent, recordedNotification{subject: subject, body: body})
	return nil
}

func dueIn(days int, status, serial, mtype string) model.ScheduleEntry {
	return model.ScheduleEntry{
		ID:              uuid.New(),
		EquipmentID:     uuid.New(),
		Equipment:       &model.Equipment{SerialNumber: serial},
		DueDate:         time.Now().AddDate(0, 0, days),
		MaintenanceType: mtype,
		Status:          status,
	}
}

func TestScanAggregatesUpcomingMaintenance(t *testing.T) {
	schedules := &fakeScheduleRepo{entries: []model.ScheduleEntry{
		dueIn(1, model.ScheduleStatusScheduled, "WM-1001", "descaling"),
		dueIn(5, model.ScheduleStatusInProgress, "DW-2044", "filter change"),
		dueIn(5, model.ScheduleStatusCompleted, "DW-2044", "inspection"),
		dueIn(20, model.ScheduleStatusScheduled, "FR-0310", "inspection"),
	}}
	notifier := &recorderNotifier{}

	scheduler.Scan(context.Background(), scheduler.ReminderConfig{
		ScheduleRepo:      schedules,
		PartRepo:          &fakePartRepo{},
		Notifier:          notifier,
		LowStockThreshold: 5,
	})

	require.Len(t, notifier.sent, 1)
	got := notifier.sent[0]
	assert.Contains(t, got.subject, "2 entries")
	assert.Contains(t, got.body, "WM-1001")
	assert.Contains(t, got.body, "DW-2044")
	assert.Contains(t, got.body, "descaling")
	assert.NotContains(t, got.body, "FR-0310")
}

func TestScanReportsLowStock(t *testing.T) {
	parts := &fakePartRepo{parts: []model.Part{
		{ID: uuid.New(), Name: "Drive belt", Reference: "BLT-07", StockQuantity: 2},
		{ID: uuid.New(), Name: "Drain pump", Reference: "PMP-01", StockQuantity: 40},
		{ID: uuid.New(), Name: "Door seal", Reference: "SL-113", StockQuantity: 5},
	}}
	notifier := &recorderNotifier{}

	scheduler.Scan(context.Background(), scheduler.ReminderConfig{
		ScheduleRepo:      &fakeScheduleRepo{},
		PartRepo:          parts,
		Notifier:          notifier,
		LowStockThreshold: 5,
	})

	require.Len(t, notifier.sent, 1)
	got := notifier.sent[0]
	assert.Contains(t, got.subject, "2 parts")
	assert.Contains(t, got.body, "BLT-07")
	assert.Contains(t, got.body, "SL-113")
	assert.NotContains(t, got.body, "PMP-01")
}

func TestScanSendsNothingWhenAllClear(t *testing.T) {
	notifier := &recorderNotifier{}

	scheduler.Scan(context.Background(), scheduler.ReminderConfig{
		ScheduleRepo:      &fakeScheduleRepo{},
		PartRepo:          &fakePartRepo{},
		Notifier:          notifier,
		LowStockThreshold: 5,
	})

	assert.Empty(t, notifier.sent)
}

func TestScanIsRepeatable(t *testing.T) {
	schedules := &fakeScheduleRepo{entries: []model.ScheduleEntry{
		dueIn(3, model.ScheduleStatusScheduled, "WM-1001", "descaling"),
	}}
	notifier := &recorderNotifier{}
	cfg := scheduler.ReminderConfig{
		ScheduleRepo:      schedules,
		PartRepo:          &fakePartRepo{},
		Notifier:          notifier,
		LowStockThreshold: 5,
	}

	scheduler.Scan(context.Background(), cfg)
	scheduler.Scan(context.Background(), cfg)
	scheduler.Scan(context.Background(), cfg)

	// Scans only read; every pass sees the same state and reports it again.
	assert.Equal(t, 3, schedules.calls)
	require.Len(t, notifier.sent, 3)
	assert.Equal(t, notifier.sent[0].body, notifier.sent[2].body)
}
