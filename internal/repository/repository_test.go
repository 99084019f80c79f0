package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/common"
	"github.com/clinops/docintake/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory(context.Background(), testLogger())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func strp(s string) *string { return &s }

func TestPatientRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	repo := NewPatientRepository(db, activity, testLogger())
	ctx := context.Background()

	p := &entity.Patient{
		ID:          uuid.New(),
		FirstName:   strp("Jane"),
		LastName:    strp("Doe"),
		DateOfBirth: strp("01/15/1990"),
	}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", *got.FirstName)
	assert.Equal(t, "Doe", *got.LastName)
	assert.Equal(t, "01/15/1990", *got.DateOfBirth)
	assert.Nil(t, got.ExtractedFrom)
}

func TestPatientRepositoryFindByNameCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	repo := NewPatientRepository(db, activity, testLogger())
	ctx := context.Background()

	p := &entity.Patient{ID: uuid.New(), FirstName: strp("Mark"), LastName: strp("Green")}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByName(ctx, "mark", "GREEN")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.FindByName(ctx, "Nobody", "Here")
	assert.True(t, common.IsNotFound(err))
}

func TestPatientRepositoryUpdate(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	repo := NewPatientRepository(db, activity, testLogger())
	ctx := context.Background()

	p := &entity.Patient{ID: uuid.New(), FirstName: strp("Ann"), LastName: strp("Lee")}
	require.NoError(t, repo.Create(ctx, p))

	p.DateOfBirth = strp("03/14/1985")
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, "03/14/1985", *got.DateOfBirth)
}

func TestPatientRepositoryGetMissing(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	repo := NewPatientRepository(db, activity, testLogger())

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, common.IsNotFound(err))
}

func TestOrderRepositoryLifecycle(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	repo := NewOrderRepository(db, activity, testLogger())
	ctx := context.Background()

	order := entity.NewOrder(nil, "", strp("chest x-ray"))
	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, "general", order.OrderType)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusPending, got.Status)
	assert.Empty(t, got.Documents)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, got.UpdateStatus("completed"))
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.GetByID(ctx, order.ID)
	assert.True(t, common.IsNotFound(err))
}

func TestOrderRepositoryDeleteDetachesDocuments(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	orders := NewOrderRepository(db, activity, testLogger())
	documents := NewDocumentRepository(db, activity, testLogger())
	ctx := context.Background()

	order := entity.NewOrder(nil, "lab", nil)
	require.NoError(t, orders.Create(ctx, order))

	doc := entity.NewDocument("result.pdf", "/tmp/result.pdf", "pdf", &order.ID)
	require.NoError(t, documents.Create(ctx, doc))

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{doc.ID}, got.Documents)

	require.NoError(t, orders.Delete(ctx, order.ID))

	// document survives, detached
	d, err := documents.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, d.OrderID)
}

func TestDocumentRepositoryExtractionResults(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	repo := NewDocumentRepository(db, activity, testLogger())
	ctx := context.Background()

	doc := entity.NewDocument("intake.txt", "/tmp/intake.txt", ".TXT", nil)
	assert.Equal(t, "txt", doc.FileExt)
	assert.Equal(t, constants.TEXT, doc.Format)
	require.NoError(t, repo.Create(ctx, doc))

	doc.SetExtracted("Patient Name: Jane Doe",
		map[string]string{"first_name": "Jane", "last_name": "Doe"},
		map[string]float32{"first_name": 0.95, "last_name": 0.95},
		1.25,
	)
	require.NoError(t, repo.Update(ctx, doc))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocStatusCompleted, got.Status)
	require.NotNil(t, got.ExtractedText)
	assert.Equal(t, "Patient Name: Jane Doe", *got.ExtractedText)
	assert.Equal(t, "Jane", got.PatientData["first_name"])
	assert.InDelta(t, 0.95, got.ConfidenceScores["last_name"], 1e-6)
	require.NotNil(t, got.ProcessingTime)
	assert.InDelta(t, 1.25, *got.ProcessingTime, 1e-9)
	require.NotNil(t, got.ProcessedAt)
}

func TestDocumentRepositoryFailedState(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	repo := NewDocumentRepository(db, activity, testLogger())
	ctx := context.Background()

	doc := entity.NewDocument("scan.png", "/tmp/scan.png", "png", nil)
	require.NoError(t, repo.Create(ctx, doc))

	doc.SetFailed("ocr: tesseract failed")
	require.NoError(t, repo.Update(ctx, doc))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "ocr: tesseract failed", *got.ErrorMessage)
	assert.Nil(t, got.ProcessedAt)
}

func TestActivityRepositoryRecordsMutations(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	patients := NewPatientRepository(db, activity, testLogger())
	ctx := context.Background()

	p := &entity.Patient{ID: uuid.New(), FirstName: strp("Iris"), LastName: strp("West")}
	require.NoError(t, patients.Create(ctx, p))

	logs, err := activity.List(ctx, 0, 1000)
	require.NoError(t, err)

	found := false
	for _, l := range logs {
		if l.EntityID == p.ID.String() && l.Action == constants.ActionCreate && l.EntityType == constants.EntityPatient {
			found = true
		}
	}
	assert.True(t, found, "expected a CREATE activity row for the patient")
}

func TestActivityRepositoryListNewestFirst(t *testing.T) {
	db := openTestDB(t)
	activity := NewActivityRepository(db, testLogger())
	ctx := context.Background()

	first := uuid.New().String()
	second := uuid.New().String()
	activity.Log(ctx, constants.ActionCreate, constants.EntityOrder, first, nil)
	time.Sleep(5 * time.Millisecond)
	activity.Log(ctx, constants.ActionUpdate, constants.EntityOrder, second, nil)

	logs, err := activity.List(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, second, logs[0].EntityID, "most recent entry comes first")

	logs, err = activity.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.False(t, logs[0].Timestamp.Before(logs[1].Timestamp))
}
