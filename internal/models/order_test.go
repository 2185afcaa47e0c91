package models_test

import (
	"database/sql"
	"testing"

	"bust-order-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsPaidLike(t *testing.T) {
	paidLike := map[models.Status]bool{
		models.StatusCreated:      false,
		models.StatusProcessing:   false,
		models.StatusPreviewReady: false,
		models.StatusPaid:         true,
		models.StatusInProduction: true,
		models.StatusShipped:      true,
		models.StatusFailed:       false,
	}
	for status, want := range paidLike {
		assert.Equal(t, want, status.IsPaidLike(), string(status))
	}
	assert.Len(t, models.PaidLikeStatuses, 3)
	for _, s := range models.PaidLikeStatuses {
		assert.True(t, s.IsPaidLike())
	}
}

func TestStatus_CanRetryPreview(t *testing.T) {
	assert.True(t, models.StatusPreviewReady.CanRetryPreview())
	assert.True(t, models.StatusFailed.CanRetryPreview())
	assert.True(t, models.StatusCreated.CanRetryPreview())
	assert.False(t, models.StatusProcessing.CanRetryPreview())
	assert.False(t, models.StatusPaid.CanRetryPreview())
	assert.False(t, models.StatusShipped.CanRetryPreview())
}

func TestParseStatus(t *testing.T) {
	s, ok := models.ParseStatus("  In_Production ")
	assert.True(t, ok)
	assert.Equal(t, models.StatusInProduction, s)

	_, ok = models.ParseStatus("delivered")
	assert.False(t, ok)
}

func TestOrder_ReadyForProduction(t *testing.T) {
	o := &models.Order{Status: models.StatusPaid}
	assert.False(t, o.ReadyForProduction())

	o.FilamentColor = sql.NullString{String: "stone_gray", Valid: true}
	assert.False(t, o.ReadyForProduction())

	o.ModelOBJPath = sql.NullString{String: "id/model.obj", Valid: true}
	assert.True(t, o.ReadyForProduction())

	o.Status = models.StatusPreviewReady
	assert.False(t, o.ReadyForProduction())
}

func TestNullString(t *testing.T) {
	assert.False(t, models.NullString("   ").Valid)
	ns := models.NullString(" hello ")
	assert.True(t, ns.Valid)
	assert.Equal(t, "hello", ns.String)
}
