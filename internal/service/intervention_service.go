package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InterventionService is the ledger of repair interventions and the
// owner of the stock invariant: at rest, every part's quantity equals
// its initial quantity minus the sum of quantities recorded by existing
// usage rows. Each operation runs as one transaction; a failure anywhere
// inside it leaves stock and usage rows exactly as they were.
type InterventionService interface {
	Create(ctx context.Context, sess *model.Session, req dto.CreateInterventionRequest) (*dto.InterventionResponse, error)
	Get(ctx context.Context, sess *model.Session, id uuid.UUID) (*dto.InterventionResponse, error)
	ListByEquipment(ctx context.Context, sess *model.Session, equipmentID uuid.UUID) (*dto.InterventionListResponse, error)
	Update(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdateInterventionRequest) (*dto.InterventionResponse, error)
	Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error
}

type interventionService struct {
	repo          repository.InterventionRepository
	partRepo      repository.PartRepository
	equipmentRepo repository.EquipmentRepository
	movementRepo  repository.PartMovementRepository
}

func NewInterventionService(
	repo repository.InterventionRepository,
	partRepo repository.PartRepository,
	equipmentRepo repository.EquipmentRepository,
	movementRepo repository.PartMovementRepository,
) InterventionService {
	return &interventionService{
		repo:          repo,
		partRepo:      partRepo,
		equipmentRepo: equipmentRepo,
		movementRepo:  movementRepo,
	}
}

// resolvedUsage is a validated part line with the price frozen at
// resolution time.
type resolvedUsage struct {
	partID    uuid.UUID
	name      string
	reference string
	quantity  int
	unitPrice decimal.Decimal
	lineCost  decimal.Decimal
	stock     int
}

// resolveUsages validates the requested lines against the catalog:
// parseable ids, positive quantities, no duplicate parts, every part
// still present. Stock feasibility is checked separately because edits
// measure it against restored levels.
func (s *interventionService) resolveUsages(ctx context.Context, reqs []dto.PartUsageRequest) ([]resolvedUsage, error) {
	seen := make(map[uuid.UUID]bool, len(reqs))
	resolved := make([]resolvedUsage, 0, len(reqs))
	for _, r := range reqs {
		pid, err := uuid.Parse(r.PartID)
		if err != nil {
			return nil, apperr.Validationf("invalid part id %q", r.PartID)
		}
		if r.Quantity <= 0 {
			return nil, apperr.Validationf("quantity for part %s must be a positive integer", r.PartID)
		}
		if seen[pid] {
			return nil, apperr.Validationf("part %s listed more than once", r.PartID)
		}
		seen[pid] = true

		p, err := s.partRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Referentialf("part %s does not exist", pid)
			}
			return nil, err
		}
		qty := decimal.NewFromInt(int64(r.Quantity))
		resolved = append(resolved, resolvedUsage{
			partID:    pid,
			name:      p.Name,
			reference: p.Reference,
			quantity:  r.Quantity,
			unitPrice: p.UnitPrice,
			lineCost:  p.UnitPrice.Mul(qty),
			stock:     p.StockQuantity,
		})
	}
	return resolved, nil
}

func (s *interventionService) Create(ctx context.Context, sess *model.Session, req dto.CreateInterventionRequest) (*dto.InterventionResponse, error) {
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

	entryDate, err := parseDate("entry_date", req.EntryDate)
	if err != nil {
		return nil, err
	}
	exitDate, err := parseOptionalDate("exit_date", req.ExitDate)
	if err != nil {
		return nil, err
	}
	if req.LaborCost.IsNegative() {
		return nil, apperr.Validationf("labor cost cannot be negative")
	}

	resolved, err := s.resolveUsages(ctx, req.Parts)
	if err != nil {
		return nil, err
	}
	// Pre-flight stock check. The guarded update inside the transaction
	// re-validates, so a race between here and apply still cannot drive
	// stock negative — it fails the whole creation instead.
	for _, r := range resolved {
		if r.quantity > r.stock {
			return nil, apperr.InsufficientStockf(
				"insufficient stock for part %s: have %d, requested %d", r.reference, r.stock, r.quantity)
		}
	}

	iv := &model.Intervention{
		EquipmentID:   equipmentID,
		EntryDate:     entryDate,
		ExitDate:      exitDate,
		RepairDetails: req.RepairDetails,
		Technician:    req.Technician,
		LaborCost:     req.LaborCost,
		TotalCost:     req.LaborCost, // provisional until lines are applied
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, iv); err != nil {
			return err
		}
		total := req.LaborCost
		for _, r := range resolved {
			if err := s.applyUsageTx(tx, iv.ID, r); err != nil {
				return err
			}
			total = total.Add(r.lineCost)
		}
		return s.repo.UpdateTotalCostTx(tx, iv.ID, total)
	})
	if txErr != nil {
		return nil, txErr
	}

	iv.TotalCost = sumLineCosts(req.LaborCost, resolved)
	return buildResponse(iv, "", resolved), nil
}

// applyUsageTx inserts the usage row, debits stock, and writes the
// movement record — all on the same transaction.
func (s *interventionService) applyUsageTx(tx *gorm.DB, interventionID uuid.UUID, r resolvedUsage) error {
	if err := s.repo.CreateUsageTx(tx, &model.PartUsage{
		InterventionID: interventionID,
		PartID:         r.partID,
		QuantityUsed:   r.quantity,
		LineCost:       r.lineCost,
	}); err != nil {
		return err
	}
	before, err := s.stockInTx(tx, r.partID)
	if err != nil {
		return err
	}
	if err := s.partRepo.AdjustStockTx(tx, r.partID, -r.quantity); err != nil {
		return err
	}
	ref := interventionID
	return s.movementRepo.CreateTx(tx, &model.PartMovement{
		PartID:      r.partID,
		Type:        "usage",
		Quantity:    -r.quantity,
		StockBefore: before,
		StockAfter:  before - r.quantity,
		Reason:      fmt.Sprintf("intervention %s", interventionID),
		ReferenceID: &ref,
	})
}

// reverseUsageTx credits a previously recorded usage back to stock.
func (s *interventionService) reverseUsageTx(tx *gorm.DB, u model.PartUsage, movementType string) error {
	before, err := s.stockInTx(tx, u.PartID)
	if err != nil {
		return err
	}
	if err := s.partRepo.AdjustStockTx(tx, u.PartID, u.QuantityUsed); err != nil {
		return err
	}
	ref := u.InterventionID
	return s.movementRepo.CreateTx(tx, &model.PartMovement{
		PartID:      u.PartID,
		Type:        movementType,
		Quantity:    u.QuantityUsed,
		StockBefore: before,
		StockAfter:  before + u.QuantityUsed,
		Reason:      fmt.Sprintf("intervention %s", u.InterventionID),
		ReferenceID: &ref,
	})
}

func (s *interventionService) stockInTx(tx *gorm.DB, partID uuid.UUID) (int, error) {
	p, err := s.partRepo.FindByIDTx(tx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.Referentialf("part %s no longer exists", partID)
		}
		return 0, err
	}
	return p.StockQuantity, nil
}

func (s *interventionService) Get(ctx context.Context, sess *model.Session, id uuid.UUID) (*dto.InterventionResponse, error) {
	iv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("intervention not found")
		}
		return nil, err
	}
	return interventionToResponse(iv), nil
}

func (s *interventionService) ListByEquipment(ctx context.Context, sess *model.Session, equipmentID uuid.UUID) (*dto.InterventionListResponse, error) {
	items, err := s.repo.ListByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	resp := &dto.InterventionListResponse{
		Data:  make([]dto.InterventionResponse, 0, len(items)),
		Total: int64(len(items)),
	}
	for i := range items {
		resp.Data = append(resp.Data, *interventionToResponse(&items[i]))
	}
	return resp, nil
}

// Update replaces the intervention's fields and its whole part-usage set
// with compensate-then-apply semantics: give all original quantities
// back, then debit the new ones, in one transaction. Feasibility is
// measured against the restored levels, so shrinking a usage from 3 to 5
// with stock 7 compares 5 against 7+3, not against 7.
func (s *interventionService) Update(ctx context.Context, sess *model.Session, id uuid.UUID, req dto.UpdateInterventionRequest) (*dto.InterventionResponse, error) {
	if !sess.Perms.EditInterventions {
		return nil, apperr.AccessDeniedf("missing edit-interventions permission")
	}

	iv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("intervention not found")
		}
		return nil, err
	}

	entryDate, err := parseDate("entry_date", req.EntryDate)
	if err != nil {
		return nil, err
	}
	exitDate, err := parseOptionalDate("exit_date", req.ExitDate)
	if err != nil {
		return nil, err
	}
	if req.LaborCost.IsNegative() {
		return nil, apperr.Validationf("labor cost cannot be negative")
	}

	// Referential pre-check on the original set: a usage pointing at a
	// since-deleted part fails the edit rather than silently dropping
	// the line.
	returned := make(map[uuid.UUID]int, len(iv.Usages))
	for _, u := range iv.Usages {
		if _, err := s.partRepo.FindByID(ctx, u.PartID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Referentialf("part %s referenced by this intervention no longer exists", u.PartID)
			}
			return nil, err
		}
		returned[u.PartID] += u.QuantityUsed
	}

	resolved, err := s.resolveUsages(ctx, req.Parts)
	if err != nil {
		return nil, err
	}
	// Feasibility against restored stock. Checked before any mutation so
	// a failed edit leaves the ledger untouched; the in-transaction
	// guarded updates enforce it again at apply time.
	for _, r := range resolved {
		if r.quantity > r.stock+returned[r.partID] {
			return nil, apperr.InsufficientStockf(
				"insufficient stock for part %s: have %d (+%d to be restored), requested %d",
				r.reference, r.stock, returned[r.partID], r.quantity)
		}
	}

	iv.EntryDate = entryDate
	iv.ExitDate = exitDate
	iv.RepairDetails = req.RepairDetails
	iv.Technician = req.Technician
	iv.LaborCost = req.LaborCost
	iv.TotalCost = sumLineCosts(req.LaborCost, resolved)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Compensate: credit every original usage back, drop the rows.
		for _, u := range iv.Usages {
			if err := s.reverseUsageTx(tx, u, "usage_reversal"); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteUsagesTx(tx, iv.ID); err != nil {
			return err
		}
		// Apply: insert the new set against the restored levels.
		for _, r := range resolved {
			if err := s.applyUsageTx(tx, iv.ID, r); err != nil {
				return err
			}
		}
		return s.repo.UpdateTx(tx, iv)
	})
	if txErr != nil {
		return nil, txErr
	}

	return buildResponse(iv, serialOf(iv.Equipment), resolved), nil
}

func (s *interventionService) Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error {
	if !sess.Perms.DeleteInterventions {
		return apperr.AccessDeniedf("missing delete-interventions permission")
	}

	iv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("intervention not found")
		}
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, u := range iv.Usages {
			if err := s.reverseUsageTx(tx, u, "delete_restore"); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteUsagesTx(tx, iv.ID); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, iv.ID)
	})
}

func sumLineCosts(labor decimal.Decimal, resolved []resolvedUsage) decimal.Decimal {
	total := labor
	for _, r := range resolved {
		total = total.Add(r.lineCost)
	}
	return total
}

func serialOf(e *model.Equipment) string {
	if e == nil {
		return ""
	}
	return e.SerialNumber
}

func buildResponse(iv *model.Intervention, serial string, resolved []resolvedUsage) *dto.InterventionResponse {
	parts := make([]dto.PartUsageResponse, 0, len(resolved))
	for _, r := range resolved {
		parts = append(parts, dto.PartUsageResponse{
			PartID:    r.partID.String(),
			PartName:  r.name,
			Reference: r.reference,
			Quantity:  r.quantity,
			LineCost:  r.lineCost,
		})
	}
	return &dto.InterventionResponse{
		ID:            iv.ID.String(),
		EquipmentID:   iv.EquipmentID.String(),
		SerialNumber:  serial,
		EntryDate:     formatDate(iv.EntryDate),
		ExitDate:      formatOptionalDate(iv.ExitDate),
		RepairDetails: iv.RepairDetails,
		Technician:    iv.Technician,
		LaborCost:     iv.LaborCost,
		TotalCost:     iv.TotalCost,
		Parts:         parts,
	}
}

func interventionToResponse(iv *model.Intervention) *dto.InterventionResponse {
	parts := make([]dto.PartUsageResponse, 0, len(iv.Usages))
	for _, u := range iv.Usages {
		name, ref := "", ""
		if u.Part != nil {
			name, ref = u.Part.Name, u.Part.Reference
		}
		parts = append(parts, dto.PartUsageResponse{
			PartID:    u.PartID.String(),
			PartName:  name,
			Reference: ref,
			Quantity:  u.QuantityUsed,
			LineCost:  u.LineCost,
		})
	}
	return &dto.InterventionResponse{
		ID:            iv.ID.String(),
		EquipmentID:   iv.EquipmentID.String(),
		SerialNumber:  serialOf(iv.Equipment),
		EntryDate:     formatDate(iv.EntryDate),
		ExitDate:      formatOptionalDate(iv.ExitDate),
		RepairDetails: iv.RepairDetails,
		Technician:    iv.Technician,
		LaborCost:     iv.LaborCost,
		TotalCost:     iv.TotalCost,
		Parts:         parts,
	}
}
