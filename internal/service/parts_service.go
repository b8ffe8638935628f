package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// PartsService manages the spare-parts stock. Direct stock edits go
// through AdjustStock; usage-driven adjustments are owned by the
// intervention ledger, which calls the repository inside its own
// transactions. Mutations are gated by the caller's stock flags.
type PartsService interface {
	Create(ctx context.Context, sess *model.Session, req dto.CreatePartRequest) (*dto.PartResponse, error)
	Get(ctx context.Context, sess *model.Session, id uuid.UUID) (*dto.PartResponse, error)
	List(ctx context.Context, sess *model.Session, filter dto.PartFilter) (*dto.PartListResponse, error)
	Update(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdatePartRequest) (*dto.PartResponse, error)
	Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error
	AdjustStock(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.AdjustStockRequest) (*dto.PartResponse, error)
	ListLowStock(ctx context.Context, sess *model.Session, threshold int) ([]dto.PartResponse, error)
	ListMovements(ctx context.Context, sess *model.Session, filter repository.PartMovementFilter) ([]dto.PartMovementResponse, int64, error)
	// ExportStock renders the full parts list as an .xlsx workbook.
	ExportStock(ctx context.Context, sess *model.Session) ([]byte, error)
}

type partsService struct {
	repo         repository.PartRepository
	movementRepo repository.PartMovementRepository
	// lowStockThreshold is the configured default used when the caller
	// does not supply one.
	lowStockThreshold int
}

func NewPartsService(repo repository.PartRepository, movementRepo repository.PartMovementRepository, lowStockThreshold int) PartsService {
	return &partsService{repo: repo, movementRepo: movementRepo, lowStockThreshold: lowStockThreshold}
}

func (s *partsService) Create(ctx context.Context, sess *model.Session, req dto.CreatePartRequest) (*dto.PartResponse, error) {
	if !sess.Perms.AddStock {
		return nil, apperr.AccessDeniedf("missing add-stock permission")
	}
	name := strings.TrimSpace(req.Name)
	ref := strings.TrimSpace(req.Reference)
	if name == "" || ref == "" {
		return nil, apperr.Validationf("name and reference are required")
	}
	if req.UnitPrice.IsNegative() {
		return nil, apperr.Validationf("unit price cannot be negative")
	}
	if req.Stock < 0 {
		return nil, apperr.Validationf("stock cannot be negative")
	}

	if _, err := s.repo.FindByReference(ctx, ref); err == nil {
		return nil, apperr.Conflictf("reference %q already exists", ref)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.Part{
		Name:          name,
		Reference:     ref,
		Supplier:      req.Supplier,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.Stock,
		Description:   req.Description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.partToResponse(p), nil
}

func (s *partsService) Get(ctx context.Context, _ *model.Session, id uuid.UUID) (*dto.PartResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("part not found")
		}
		return nil, err
	}
	return s.partToResponse(p), nil
}

func (s *partsService) List(ctx context.Context, _ *model.Session, filter dto.PartFilter) (*dto.PartListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	parts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.PartListResponse{
		Data:  make([]dto.PartResponse, 0, len(parts)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range parts {
		resp.Data = append(resp.Data, *s.partToResponse(&parts[i]))
	}
	return resp, nil
}

func (s *partsService) Update(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdatePartRequest) (*dto.PartResponse, error) {
	if !sess.Perms.EditStock {
		return nil, apperr.AccessDeniedf("missing edit-stock permission")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("part not found")
		}
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Reference != nil {
		ref := strings.TrimSpace(*req.Reference)
		if ref == "" {
			return nil, apperr.Validationf("reference cannot be empty")
		}
		if ref != p.Reference {
			if other, err := s.repo.FindByReference(ctx, ref); err == nil && other.ID != p.ID {
				return nil, apperr.Conflictf("reference %q already exists", ref)
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			p.Reference = ref
		}
	}
	if req.Supplier != nil {
		p.Supplier = *req.Supplier
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, apperr.Validationf("unit price cannot be negative")
		}
		p.UnitPrice = *req.UnitPrice
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.partToResponse(p), nil
}

func (s *partsService) Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error {
	if !sess.Perms.DeleteStock {
		return apperr.AccessDeniedf("missing delete-stock permission")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("part not found")
		}
		return err
	}
	// A part referenced by recorded usages cannot disappear from under
	// the ledger.
	n, err := s.repo.UsageCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Referentialf("part is referenced by %d intervention usage(s)", n)
	}
	return s.repo.Delete(ctx, id)
}

func (s *partsService) AdjustStock(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.AdjustStockRequest) (*dto.PartResponse, error) {
	if !sess.Perms.EditStock {
		return nil, apperr.AccessDeniedf("missing edit-stock permission")
	}
	if req.Delta == 0 {
		return nil, apperr.Validationf("delta cannot be zero")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("part not found")
		}
		return nil, err
	}
	if p.StockQuantity+req.Delta < 0 {
		return nil, apperr.InsufficientStockf(
			"insufficient stock for part %s: have %d, delta %d", p.Reference, p.StockQuantity, req.Delta)
	}

	before := p.StockQuantity
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.AdjustStockTx(tx, id, req.Delta); err != nil {
			return err
		}
		return s.movementRepo.CreateTx(tx, &model.PartMovement{
			PartID:      id,
			Type:        "manual_adjust",
			Quantity:    req.Delta,
			StockBefore: before,
			StockAfter:  before + req.Delta,
			Reason:      req.Reason,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	p.StockQuantity = before + req.Delta
	return s.partToResponse(p), nil
}

func (s *partsService) ListLowStock(ctx context.Context, _ *model.Session, threshold int) ([]dto.PartResponse, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	parts, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		r := *s.partToResponse(&parts[i])
		r.LowStock = true
		resp = append(resp, r)
	}
	return resp, nil
}

func (s *partsService) ListMovements(ctx context.Context, _ *model.Session, filter repository.PartMovementFilter) ([]dto.PartMovementResponse, int64, error) {
	movements, total, err := s.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.PartMovementResponse, 0, len(movements))
	for _, m := range movements {
		name := ""
		if m.Part != nil {
			name = m.Part.Name
		}
		var ref *string
		if m.ReferenceID != nil {
			v := m.ReferenceID.String()
			ref = &v
		}
		resp = append(resp, dto.PartMovementResponse{
			ID:          m.ID.String(),
			PartID:      m.PartID.String(),
			PartName:    name,
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			ReferenceID: ref,
			CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return resp, total, nil
}

// ExportStock writes every part to a single-sheet workbook, one row per
// part, with a LOW marker on rows at or under the configured threshold.
func (s *partsService) ExportStock(ctx context.Context, _ *model.Session) ([]byte, error) {
	parts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Stock"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Reference", "Name", "Supplier", "Unit Price", "Stock", "Low Stock", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range parts {
		low := ""
		if p.StockQuantity <= s.lowStockThreshold {
			low = "LOW"
		}
		values := []interface{}{
			p.Reference, p.Name, p.Supplier,
			p.UnitPrice.InexactFloat64(), p.StockQuantity, low, p.Description,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export stock: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *partsService) partToResponse(p *model.Part) *dto.PartResponse {
	return &dto.PartResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Reference:     p.Reference,
		Supplier:      p.Supplier,
		UnitPrice:     p.UnitPrice,
		StockQuantity: p.StockQuantity,
		Description:   p.Description,
		LowStock:      p.StockQuantity <= s.lowStockThreshold,
	}
}
