package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleFixture(t *testing.T) (*stubScheduleRepo, *model.Equipment, service.ScheduleService) {
	t.Helper()
	equipment := newStubEquipmentRepo()
	washer := &model.Equipment{SerialNumber: "WM-1001", Brand: "Arthur Martin", Model: "AW 2100"}
	require.NoError(t, equipment.Create(context.Background(), washer))

	repo := newStubScheduleRepo()
	return repo, washer, service.NewScheduleService(repo, equipment)
}

func TestCreateScheduleEntry(t *testing.T) {
	_, washer, svc := newScheduleFixture(t)

	resp, err := svc.Create(context.Background(), adminSession(), dto.CreateScheduleRequest{
		EquipmentID:     washer.ID.String(),
		DueDate:         "2026-09-10",
		MaintenanceType: "descaling",
		Technician:      "rachid",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusScheduled, resp.Status)
	assert.Equal(t, "2026-09-10", resp.DueDate)
}

func TestCreateScheduleUnknownEquipment(t *testing.T) {
	_, _, svc := newScheduleFixture(t)

	_, err := svc.Create(context.Background(), adminSession(), dto.CreateScheduleRequest{
		EquipmentID:     "2f5d47a4-5cde-4a2b-9a0f-3b2f6f6ad001",
		DueDate:         "2026-09-10",
		MaintenanceType: "descaling",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindReferential, apperr.KindOf(err))
}

func TestCreateScheduleRequiresAddInterventions(t *testing.T) {
	_, washer, svc := newScheduleFixture(t)

	_, err := svc.Create(context.Background(), readOnlySession(), dto.CreateScheduleRequest{
		EquipmentID:     washer.ID.String(),
		DueDate:         "2026-09-10",
		MaintenanceType: "descaling",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestUpdateScheduleStatus(t *testing.T) {
	_, washer, svc := newScheduleFixture(t)

	created, err := svc.Create(context.Background(), adminSession(), dto.CreateScheduleRequest{
		EquipmentID:     washer.ID.String(),
		DueDate:         "2026-09-10",
		MaintenanceType: "descaling",
	})
	require.NoError(t, err)

	status := model.ScheduleStatusCompleted
	updated, err := svc.Update(context.Background(), adminSession(), mustParseUUID(t, created.ID),
		dto.UpdateScheduleRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusCompleted, updated.Status)

	bogus := "cancelled"
	_, err = svc.Update(context.Background(), adminSession(), mustParseUUID(t, created.ID),
		dto.UpdateScheduleRequest{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListDueWithinWindow(t *testing.T) {
	repo, washer, svc := newScheduleFixture(t)
	today := time.Now()

	add := func(days int, status string) {
		require.NoError(t, repo.Create(context.Background(), &model.ScheduleEntry{
			EquipmentID:     washer.ID,
			DueDate:         today.AddDate(0, 0, days),
			MaintenanceType: "inspection",
			Status:          status,
		}))
	}
	add(2, model.ScheduleStatusScheduled)   // inside window
	add(6, model.ScheduleStatusInProgress)  // inside window
	add(6, model.ScheduleStatusCompleted)   // completed: excluded
	add(12, model.ScheduleStatusScheduled)  // beyond window
	add(-3, model.ScheduleStatusScheduled)  // already overdue: before window

	entries, err := svc.ListDueWithin(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEqual(t, model.ScheduleStatusCompleted, e.Status)
	}
}

func TestDeleteScheduleRequiresDeleteInterventions(t *testing.T) {
	_, washer, svc := newScheduleFixture(t)

	created, err := svc.Create(context.Background(), adminSession(), dto.CreateScheduleRequest{
		EquipmentID:     washer.ID.String(),
		DueDate:         "2026-09-10",
		MaintenanceType: "descaling",
	})
	require.NoError(t, err)
	id := mustParseUUID(t, created.ID)

	err = svc.Delete(context.Background(), technicianSession(), id)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	require.NoError(t, svc.Delete(context.Background(), adminSession(), id))
	_, err = svc.Get(context.Background(), adminSession(), id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
