package service

import (
	"context"
	"errors"
	"strings"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EquipmentService is the catalog of tracked machines. A serial-number
// lookup that misses returns NotFound; the front end then opens the
// creation form and calls Create — the original "created on first
// search-miss" flow. Equipment is never deleted.
type EquipmentService interface {
	LookupBySerial(ctx context.Context, sess *model.Session, serial string) (*dto.EquipmentResponse, error)
	Create(ctx context.Context, sess *model.Session, req dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error)
	Get(ctx context.Context, sess *model.Session, id uuid.UUID) (*dto.EquipmentResponse, error)
	List(ctx context.Context, sess *model.Session, filter dto.EquipmentFilter) (*dto.EquipmentListResponse, error)
	Update(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error)
}

type equipmentService struct {
	repo repository.EquipmentRepository
}

func NewEquipmentService(repo repository.EquipmentRepository) EquipmentService {
	return &equipmentService{repo: repo}
}

func (s *equipmentService) LookupBySerial(ctx context.Context, _ *model.Session, serial string) (*dto.EquipmentResponse, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, apperr.Validationf("serial number is required")
	}
	e, err := s.repo.FindBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("no equipment with serial %q", serial)
		}
		return nil, err
	}
	return equipmentToResponse(e), nil
}

func (s *equipmentService) Create(ctx context.Context, _ *model.Session, req dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error) {
	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		return nil, apperr.Validationf("serial number is required")
	}
	if strings.TrimSpace(req.Brand) == "" || strings.TrimSpace(req.Model) == "" {
		return nil, apperr.Validationf("brand and model are required")
	}

	if _, err := s.repo.FindBySerial(ctx, serial); err == nil {
		return nil, apperr.Conflictf("serial number %q already exists", serial)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	purchase, err := parseOptionalDate("purchase_date", req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	sale, err := parseOptionalDate("sale_date", req.SaleDate)
	if err != nil {
		return nil, err
	}

	e := &model.Equipment{
		SerialNumber: serial,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		PurchaseDate: purchase,
		SaleDate:     sale,
		BuyerID:      req.BuyerID,
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return equipmentToResponse(e), nil
}

func (s *equipmentService) Get(ctx context.Context, _ *model.Session, id uuid.UUID) (*dto.EquipmentResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("equipment not found")
		}
		return nil, err
	}
	return equipmentToResponse(e), nil
}

func (s *equipmentService) List(ctx context.Context, _ *model.Session, filter dto.EquipmentFilter) (*dto.EquipmentListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.EquipmentListResponse{
		Data:  make([]dto.EquipmentResponse, 0, len(items)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range items {
		resp.Data = append(resp.Data, *equipmentToResponse(&items[i]))
	}
	return resp, nil
}

func (s *equipmentService) Update(ctx context.Context, _ *model.Session, id uuid.UUID, req dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("equipment not found")
		}
		return nil, err
	}

	if req.Brand != nil {
		if strings.TrimSpace(*req.Brand) == "" {
			return nil, apperr.Validationf("brand cannot be empty")
		}
		e.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		if strings.TrimSpace(*req.Model) == "" {
			return nil, apperr.Validationf("model cannot be empty")
		}
		e.Model = strings.TrimSpace(*req.Model)
	}
	if req.PurchaseDate != nil {
		d, err := parseOptionalDate("purchase_date", req.PurchaseDate)
		if err != nil {
			return nil, err
		}
		e.PurchaseDate = d
	}
	if req.SaleDate != nil {
		d, err := parseOptionalDate("sale_date", req.SaleDate)
		if err != nil {
			return nil, err
		}
		e.SaleDate = d
	}
	if req.BuyerID != nil {
		e.BuyerID = req.BuyerID
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return equipmentToResponse(e), nil
}

func equipmentToResponse(e *model.Equipment) *dto.EquipmentResponse {
	return &dto.EquipmentResponse{
		ID:           e.ID.String(),
		SerialNumber: e.SerialNumber,
		Brand:        e.Brand,
		Model:        e.Model,
		PurchaseDate: formatOptionalDate(e.PurchaseDate),
		SaleDate:     formatOptionalDate(e.SaleDate),
		BuyerID:      e.BuyerID,
		Notes:        e.Notes,
	}
}
