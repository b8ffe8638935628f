package service_test

// stubs_test.go
// In-memory repository stubs shared by the service tests. The stubs
// reproduce the contracts the services rely on, notably the guarded
// stock adjustment that refuses to drive a quantity below zero.

import (
	"context"
	"testing"
	"time"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("bad uuid %q: %v", s, err)
	}
	return id
}

// ── Sessions ─────────────────────────────────────────────────────────────────

func sessionWith(perms model.PermissionSet) *model.Session {
	return &model.Session{
		UserID:   uuid.New(),
		Username: "tester",
		Role:     model.RoleTechnician,
		Perms:    perms,
	}
}

func adminSession() *model.Session {
	s := sessionWith(model.DefaultPermissions(model.RoleAdmin))
	s.Role = model.RoleAdmin
	s.Username = "admin"
	return s
}

func technicianSession() *model.Session {
	return sessionWith(model.DefaultPermissions(model.RoleTechnician))
}

func readOnlySession() *model.Session {
	return sessionWith(model.DefaultPermissions(model.RoleUser))
}

// ── Equipment ────────────────────────────────────────────────────────────────

type stubEquipmentRepo struct {
	byID     map[uuid.UUID]*model.Equipment
	bySerial map[string]*model.Equipment
}

func newStubEquipmentRepo() *stubEquipmentRepo {
	return &stubEquipmentRepo{
		byID:     make(map[uuid.UUID]*model.Equipment),
		bySerial: make(map[string]*model.Equipment),
	}
}

func (r *stubEquipmentRepo) Create(_ context.Context, e *model.Equipment) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cloned := *e
	r.byID[e.ID] = &cloned
	r.bySerial[e.SerialNumber] = r.byID[e.ID]
	return nil
}

func (r *stubEquipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Equipment, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *stubEquipmentRepo) FindBySerial(_ context.Context, serial string) (*model.Equipment, error) {
	e, ok := r.bySerial[serial]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *stubEquipmentRepo) List(_ context.Context, _ dto.EquipmentFilter) ([]model.Equipment, int64, error) {
	var out []model.Equipment
	for _, e := range r.byID {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubEquipmentRepo) Update(_ context.Context, e *model.Equipment) error {
	cloned := *e
	r.byID[e.ID] = &cloned
	r.bySerial[e.SerialNumber] = r.byID[e.ID]
	return nil
}

// ── Parts ────────────────────────────────────────────────────────────────────

type stubPartRepo struct {
	parts       map[uuid.UUID]*model.Part
	usageCounts map[uuid.UUID]int64
}

func newStubPartRepo() *stubPartRepo {
	return &stubPartRepo{
		parts:       make(map[uuid.UUID]*model.Part),
		usageCounts: make(map[uuid.UUID]int64),
	}
}

func (r *stubPartRepo) add(name, reference string, price decimal.Decimal, stock int) *model.Part {
	p := &model.Part{
		ID:            uuid.New(),
		Name:          name,
		Reference:     reference,
		UnitPrice:     price,
		StockQuantity: stock,
	}
	r.parts[p.ID] = p
	return p
}

func (r *stubPartRepo) Create(_ context.Context, p *model.Part) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cloned := *p
	r.parts[p.ID] = &cloned
	return nil
}

func (r *stubPartRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Part, error) {
	p, ok := r.parts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubPartRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Part, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubPartRepo) FindByReference(_ context.Context, reference string) (*model.Part, error) {
	for _, p := range r.parts {
		if p.Reference == reference {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPartRepo) List(_ context.Context, _ dto.PartFilter) ([]model.Part, int64, error) {
	var out []model.Part
	for _, p := range r.parts {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPartRepo) ListAll(ctx context.Context) ([]model.Part, error) {
	out, _, err := r.List(ctx, dto.PartFilter{})
	return out, err
}

func (r *stubPartRepo) ListLowStock(_ context.Context, threshold int) ([]model.Part, error) {
	var out []model.Part
	for _, p := range r.parts {
		if p.StockQuantity <= threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPartRepo) Update(_ context.Context, p *model.Part) error {
	cloned := *p
	r.parts[p.ID] = &cloned
	return nil
}

func (r *stubPartRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.parts, id)
	return nil
}

func (r *stubPartRepo) UsageCount(_ context.Context, partID uuid.UUID) (int64, error) {
	return r.usageCounts[partID], nil
}

func (r *stubPartRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.parts[id]
	if !ok {
		return apperr.Referentialf("part %s no longer exists", id)
	}
	if p.StockQuantity+delta < 0 {
		return apperr.InsufficientStockf(
			"insufficient stock for part %s: have %d, delta %d", p.Reference, p.StockQuantity, delta)
	}
	p.StockQuantity += delta
	return nil
}

func (r *stubPartRepo) DB() *gorm.DB { return nil }

func (r *stubPartRepo) stock(id uuid.UUID) int { return r.parts[id].StockQuantity }

// ── Interventions ────────────────────────────────────────────────────────────

type stubInterventionRepo struct {
	interventions map[uuid.UUID]*model.Intervention
	usages        map[uuid.UUID][]model.PartUsage // keyed by intervention id
	partRepo      *stubPartRepo
	equipment     *stubEquipmentRepo
}

func newStubInterventionRepo(parts *stubPartRepo, equipment *stubEquipmentRepo) *stubInterventionRepo {
	return &stubInterventionRepo{
		interventions: make(map[uuid.UUID]*model.Intervention),
		usages:        make(map[uuid.UUID][]model.PartUsage),
		partRepo:      parts,
		equipment:     equipment,
	}
}

func (r *stubInterventionRepo) CreateTx(_ *gorm.DB, iv *model.Intervention) error {
	if iv.ID == uuid.Nil {
		iv.ID = uuid.New()
	}
	cloned := *iv
	cloned.Usages = nil
	r.interventions[iv.ID] = &cloned
	return nil
}

func (r *stubInterventionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Intervention, error) {
	iv, ok := r.interventions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *iv
	cloned.Usages = r.loadUsages(id)
	if e, ok := r.equipment.byID[iv.EquipmentID]; ok {
		cloned.Equipment = e
	}
	return &cloned, nil
}

func (r *stubInterventionRepo) loadUsages(id uuid.UUID) []model.PartUsage {
	src := r.usages[id]
	out := make([]model.PartUsage, len(src))
	copy(out, src)
	for i := range out {
		if p, ok := r.partRepo.parts[out[i].PartID]; ok {
			cloned := *p
			out[i].Part = &cloned
		}
	}
	return out
}

func (r *stubInterventionRepo) ListByEquipment(_ context.Context, equipmentID uuid.UUID) ([]model.Intervention, error) {
	var out []model.Intervention
	for id, iv := range r.interventions {
		if iv.EquipmentID == equipmentID {
			cloned := *iv
			cloned.Usages = r.loadUsages(id)
			out = append(out, cloned)
		}
	}
	return out, nil
}

func (r *stubInterventionRepo) UpdateTx(_ *gorm.DB, iv *model.Intervention) error {
	stored, ok := r.interventions[iv.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.EntryDate = iv.EntryDate
	stored.ExitDate = iv.ExitDate
	stored.RepairDetails = iv.RepairDetails
	stored.Technician = iv.Technician
	stored.LaborCost = iv.LaborCost
	stored.TotalCost = iv.TotalCost
	return nil
}

func (r *stubInterventionRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.interventions, id)
	return nil
}

func (r *stubInterventionRepo) CreateUsageTx(_ *gorm.DB, u *model.PartUsage) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cloned := *u
	cloned.Part = nil
	r.usages[u.InterventionID] = append(r.usages[u.InterventionID], cloned)
	r.partRepo.usageCounts[u.PartID]++
	return nil
}

func (r *stubInterventionRepo) DeleteUsagesTx(_ *gorm.DB, interventionID uuid.UUID) error {
	for _, u := range r.usages[interventionID] {
		r.partRepo.usageCounts[u.PartID]--
	}
	delete(r.usages, interventionID)
	return nil
}

func (r *stubInterventionRepo) UpdateTotalCostTx(_ *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	iv, ok := r.interventions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	iv.TotalCost = total
	return nil
}

func (r *stubInterventionRepo) DB() *gorm.DB { return nil }

// ── Part movements ───────────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.PartMovement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.PartMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.PartMovementFilter) ([]model.PartMovement, int64, error) {
	var out []model.PartMovement
	for _, m := range r.movements {
		if filter.PartID != nil && m.PartID != *filter.PartID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) ofType(t string) []model.PartMovement {
	var out []model.PartMovement
	for _, m := range r.movements {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// ── Schedules ────────────────────────────────────────────────────────────────

type stubScheduleRepo struct {
	entries map[uuid.UUID]*model.ScheduleEntry
}

func newStubScheduleRepo() *stubScheduleRepo {
	return &stubScheduleRepo{entries: make(map[uuid.UUID]*model.ScheduleEntry)}
}

func (r *stubScheduleRepo) Create(_ context.Context, e *model.ScheduleEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cloned := *e
	r.entries[e.ID] = &cloned
	return nil
}

func (r *stubScheduleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ScheduleEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *e
	return &cloned, nil
}

func (r *stubScheduleRepo) List(_ context.Context, filter dto.ScheduleFilter) ([]model.ScheduleEntry, int64, error) {
	var out []model.ScheduleEntry
	for _, e := range r.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.EquipmentID != "" && e.EquipmentID.String() != filter.EquipmentID {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubScheduleRepo) ListDueBetween(_ context.Context, from, to time.Time) ([]model.ScheduleEntry, error) {
	var out []model.ScheduleEntry
	for _, e := range r.entries {
		if e.Status == model.ScheduleStatusCompleted {
			continue
		}
		if e.DueDate.Before(from) || e.DueDate.After(to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubScheduleRepo) Update(_ context.Context, e *model.ScheduleEntry) error {
	cloned := *e
	r.entries[e.ID] = &cloned
	return nil
}

func (r *stubScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.entries, id)
	return nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Permissions != nil {
		u.Permissions.UserID = u.ID
	}
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *u
	return &cloned, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	perms := stored.Permissions
	cloned := *u
	cloned.Permissions = perms
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) UpdatePermissions(_ context.Context, p *model.PermissionSet) error {
	u, ok := r.users[p.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cloned := *p
	u.Permissions = &cloned
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}
