package service

import (
	"context"
	"errors"
	"time"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleService manages preventive-maintenance appointments. Mutations
// ride the intervention permission flags; reads only need a session.
type ScheduleService interface {
	Create(ctx context.Context, sess *model.Session, req dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	Get(ctx context.Context, sess *model.Session, id uuid.UUID) (*dto.ScheduleResponse, error)
	List(ctx context.Context, sess *model.Session, filter dto.ScheduleFilter) (*dto.ScheduleListResponse, error)
	Update(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error
	// ListDueWithin returns non-completed entries due in the next n days,
	// today inclusive. The reminder cron and the dashboard share it.
	ListDueWithin(ctx context.Context, days int) ([]model.ScheduleEntry, error)
}

type scheduleService struct {
	repo          repository.ScheduleRepository
	equipmentRepo repository.EquipmentRepository
}

func NewScheduleService(repo repository.ScheduleRepository, equipmentRepo repository.EquipmentRepository) ScheduleService {
	return &scheduleService{repo: repo, equipmentRepo: equipmentRepo}
}

func (s *scheduleService) Create(ctx context.Context, sess *model.Session, req dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if !sess.Perms.AddInterventions {
		return nil, apperr.AccessDeniedf("missing add-interventions permission")
	}

	equipmentID, err := uuid.Parse(req.EquipmentID)
	if err != nil {
		return nil, apperr.Validationf("invalid equipment id %q", req.EquipmentID)
	}
	if _, err := s.equipmentRepo.FindByID(ctx, equipmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Referentialf("equipment %s does not exist", equipmentID)
		}
		return nil, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.MaintenanceType == "" {
		return nil, apperr.Validationf("maintenance type is required")
	}

	e := &model.ScheduleEntry{
		EquipmentID:     equipmentID,
		DueDate:         dueDate,
		MaintenanceType: req.MaintenanceType,
		Technician:      req.Technician,
		Status:          model.ScheduleStatusScheduled,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return scheduleToResponse(e), nil
}

func (s *scheduleService) Get(ctx context.Context, sess *model.Session, id uuid.UUID) (*dto.ScheduleResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("schedule entry not found")
		}
		return nil, err
	}
	return scheduleToResponse(e), nil
}

func (s *scheduleService) List(ctx context.Context, sess *model.Session, filter dto.ScheduleFilter) (*dto.ScheduleListResponse, error) {
	if filter.Status != "" && !model.ValidScheduleStatus(filter.Status) {
		return nil, apperr.Validationf("unknown status %q", filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ScheduleListResponse{
		Data:  make([]dto.ScheduleResponse, 0, len(items)),
		Total: total,
	}
	for i := range items {
		resp.Data = append(resp.Data, *scheduleToResponse(&items[i]))
	}
	return resp, nil
}

func (s *scheduleService) Update(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	if !sess.Perms.EditInterventions {
		return nil, apperr.AccessDeniedf("missing edit-interventions permission")
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("schedule entry not found")
		}
		return nil, err
	}

	if req.DueDate != nil {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return nil, err
		}
		e.DueDate = due
	}
	if req.MaintenanceType != nil {
		if *req.MaintenanceType == "" {
			return nil, apperr.Validationf("maintenance type cannot be empty")
		}
		e.MaintenanceType = *req.MaintenanceType
	}
	if req.Technician != nil {
		e.Technician = *req.Technician
	}
	if req.Status != nil {
		if !model.ValidScheduleStatus(*req.Status) {
			return nil, apperr.Validationf("unknown status %q", *req.Status)
		}
		e.Status = *req.Status
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return scheduleToResponse(e), nil
}

func (s *scheduleService) Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error {
	if !sess.Perms.DeleteInterventions {
		return apperr.AccessDeniedf("missing delete-interventions permission")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("schedule entry not found")
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *scheduleService) ListDueWithin(ctx context.Context, days int) ([]model.ScheduleEntry, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, days).Add(24*time.Hour - time.Nanosecond)
	return s.repo.ListDueBetween(ctx, from, to)
}

func scheduleToResponse(e *model.ScheduleEntry) *dto.ScheduleResponse {
	return &dto.ScheduleResponse{
		ID:              e.ID.String(),
		EquipmentID:     e.EquipmentID.String(),
		SerialNumber:    serialOf(e.Equipment),
		DueDate:         formatDate(e.DueDate),
		MaintenanceType: e.MaintenanceType,
		Technician:      e.Technician,
		Status:          e.Status,
		Notes:           e.Notes,
	}
}
