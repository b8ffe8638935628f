package scheduler

// reminder.go
// Background goroutine that periodically scans for preventive maintenance
// falling due within the next week and for parts at or below the low-stock
// threshold, and pushes an aggregated digest per concern onto the
// notification queue. Scans are read-only: re-running one never mutates
// stock, schedules, or interventions.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/rs/zerolog/log"
)

// upcomingWindowDays is how far ahead the maintenance scan looks,
// today inclusive.
const upcomingWindowDays = 7

// Notifier is the outbound side of a scan. Production wires the Redis
// job dispatcher; tests substitute a recorder.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// ReminderConfig holds all dependencies for the reminder goroutine.
type ReminderConfig struct {
	ScheduleRepo      repository.ScheduleRepository
	PartRepo          repository.PartRepository
	Notifier          Notifier
	LowStockThreshold int
	Interval          time.Duration
}

// StartReminderCron launches a background goroutine that scans once
// immediately, then on every tick. It respects the context for graceful
// shutdown.
func StartReminderCron(ctx context.Context, cfg ReminderConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("reminder_cron: started")
		Scan(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reminder_cron: shutting down")
				return
			case <-ticker.C:
				Scan(ctx, cfg)
			}
		}
	}()
}

// Scan runs one reminder pass: at most one upcoming-maintenance digest
// and one low-stock digest, each listing every matching row. No
// notification is sent for an empty result set.
func Scan(ctx context.Context, cfg ReminderConfig) {
	scanUpcoming(ctx, cfg)
	scanLowStock(ctx, cfg)
}

func scanUpcoming(ctx context.Context, cfg ReminderConfig) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, upcomingWindowDays).Add(24*time.Hour - time.Nanosecond)

	entries, err := cfg.ScheduleRepo.ListDueBetween(ctx, from, to)
	if err != nil {
		log.Error().Err(err).Msg("reminder_cron: upcoming-maintenance query failed")
		return
	}
	if len(entries) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Maintenance due within %d days:\n\n", upcomingWindowDays)
	for _, e := range entries {
		serial := e.EquipmentID.String()
		if e.Equipment != nil {
			serial = e.Equipment.SerialNumber
		}
		fmt.Fprintf(&b, "- %s: %s (%s), due %s\n",
			serial, e.MaintenanceType, e.Status, e.DueDate.Format("2006-01-02"))
	}

	subject := fmt.Sprintf("Upcoming maintenance: %d entries due within %d days", len(entries), upcomingWindowDays)
	if err := cfg.Notifier.Notify(ctx, subject, b.String()); err != nil {
		log.Error().Err(err).Msg("reminder_cron: upcoming-maintenance notification failed")
	}
}

func scanLowStock(ctx context.Context, cfg ReminderConfig) {
	parts, err := cfg.PartRepo.ListLowStock(ctx, cfg.LowStockThreshold)
	if err != nil {
		log.Error().Err(err).Msg("reminder_cron: low-stock query failed")
		return
	}
	if len(parts) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Parts at or below the stock threshold (%d):\n\n", cfg.LowStockThreshold)
	for _, p := range parts {
		fmt.Fprintf(&b, "- %s (%s): %d in stock\n", p.Name, p.Reference, p.StockQuantity)
	}

	subject := fmt.Sprintf("Low stock: %d parts need restocking", len(parts))
	if err := cfg.Notifier.Notify(ctx, subject, b.String()); err != nil {
		log.Error().Err(err).Msg("reminder_cron: low-stock notification failed")
	}
}
