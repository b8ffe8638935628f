package service_test

import (
	"context"
	"testing"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEquipmentFixture() (*stubEquipmentRepo, service.EquipmentService) {
	repo := newStubEquipmentRepo()
	return repo, service.NewEquipmentService(repo)
}

func TestCreateEquipmentAndLookup(t *testing.T) {
	_, svc := newEquipmentFixture()

	purchase := "2024-03-15"
	created, err := svc.Create(context.Background(), readOnlySession(), dto.CreateEquipmentRequest{
		SerialNumber: "WM-1001",
		Brand:        "Arthur Martin",
		Model:        "AW 2100",
		PurchaseDate: &purchase,
	})
	require.NoError(t, err)
	assert.Equal(t, "WM-1001", created.SerialNumber)
	require.NotNil(t, created.PurchaseDate)
	assert.Equal(t, "2024-03-15", *created.PurchaseDate)

	found, err := svc.LookupBySerial(context.Background(), readOnlySession(), "WM-1001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCreateEquipmentDuplicateSerial(t *testing.T) {
	_, svc := newEquipmentFixture()

	_, err := svc.Create(context.Background(), readOnlySession(), dto.CreateEquipmentRequest{
		SerialNumber: "WM-1001", Brand: "Arthur Martin", Model: "AW 2100",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), readOnlySession(), dto.CreateEquipmentRequest{
		SerialNumber: "WM-1001", Brand: "Bosch", Model: "Serie 4",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateEquipmentBadDate(t *testing.T) {
	_, svc := newEquipmentFixture()

	bad := "15/03/2024"
	_, err := svc.Create(context.Background(), readOnlySession(), dto.CreateEquipmentRequest{
		SerialNumber: "WM-1001", Brand: "Arthur Martin", Model: "AW 2100",
		PurchaseDate: &bad,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLookupBySerialNotFound(t *testing.T) {
	_, svc := newEquipmentFixture()

	_, err := svc.LookupBySerial(context.Background(), readOnlySession(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateEquipmentPartialFields(t *testing.T) {
	_, svc := newEquipmentFixture()

	created, err := svc.Create(context.Background(), readOnlySession(), dto.CreateEquipmentRequest{
		SerialNumber: "WM-1001", Brand: "Arthur Martin", Model: "AW 2100",
	})
	require.NoError(t, err)

	notes := "front panel scratched"
	updated, err := svc.Update(context.Background(), readOnlySession(), mustParseUUID(t, created.ID),
		dto.UpdateEquipmentRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "front panel scratched", updated.Notes)
	// Untouched fields survive a partial update.
	assert.Equal(t, "Arthur Martin", updated.Brand)
}
