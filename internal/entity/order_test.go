package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinops/docintake/constants"
)

func TestNewOrderDefaults(t *testing.T) {
	o := NewOrder(nil, "", nil)

	assert.Equal(t, "general", o.OrderType)
	assert.Equal(t, constants.OrderStatusPending, o.Status)
	assert.NotNil(t, o.Documents)
	assert.Empty(t, o.Documents)
	assert.Nil(t, o.CompletedAt)
}

func TestOrderUpdateStatus(t *testing.T) {
	o := NewOrder(nil, "imaging", nil)

	require.NoError(t, o.UpdateStatus("processing"))
	assert.Equal(t, constants.OrderStatusProcessing, o.Status)
	assert.Nil(t, o.CompletedAt)

	require.NoError(t, o.UpdateStatus("completed"))
	assert.Equal(t, constants.OrderStatusCompleted, o.Status)
	require.NotNil(t, o.CompletedAt)
}

func TestOrderUpdateStatusRejectsUnknown(t *testing.T) {
	o := NewOrder(nil, "imaging", nil)

	err := o.UpdateStatus("archived")
	require.Error(t, err)
	assert.Equal(t, constants.OrderStatusPending, o.Status)
}

func TestOrderAddDocumentIdempotent(t *testing.T) {
	o := NewOrder(nil, "imaging", nil)
	id := uuid.New()

	o.AddDocument(id)
	o.AddDocument(id)

	assert.Equal(t, []uuid.UUID{id}, o.Documents)
}

func TestPatientFullName(t *testing.T) {
	first, last := "Jane", "Doe"

	assert.Equal(t, "Jane Doe", (&Patient{FirstName: &first, LastName: &last}).FullName())
	assert.Equal(t, "Jane", (&Patient{FirstName: &first}).FullName())
	assert.Equal(t, "Unknown Patient", (&Patient{}).FullName())
}

func TestDocumentStateTransitions(t *testing.T) {
	d := NewDocument("scan.pdf", "/tmp/scan.pdf", "PDF", nil)
	assert.Equal(t, constants.DocStatusUploaded, d.Status)
	assert.Equal(t, "pdf", d.FileExt)
	assert.Equal(t, constants.PDF, d.Format)

	d.SetExtracted("text", map[string]string{"first_name": "Jane"}, map[string]float32{"first_name": 0.9}, 2.5)
	assert.Equal(t, constants.DocStatusCompleted, d.Status)
	require.NotNil(t, d.ProcessedAt)

	d2 := NewDocument("scan.pdf", "/tmp/scan.pdf", "pdf", nil)
	d2.SetFailed("boom")
	assert.Equal(t, constants.DocStatusFailed, d2.Status)
	require.NotNil(t, d2.ErrorMessage)
	assert.Nil(t, d2.ProcessedAt)
}
