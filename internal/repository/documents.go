package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/common"
	"github.com/clinops/docintake/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Document, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.Document, error)
	Update(ctx context.Context, d *entity.Document) error
}

type documentRepository struct {
	db       *DB
	activity ActivityRepository
	logger   *slog.Logger
}

func NewDocumentRepository(db *DB, activity ActivityRepository, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, activity: activity, logger: logger}
}

const documentColumns = `id, filename, source_path, file_ext, format, order_id, status, file_size,
	extracted_text, patient_data, confidence_scores, processing_time, error_message,
	created_at, updated_at, processed_at`

func (r *documentRepository) Create(ctx context.Context, d *entity.Document) error {
	patientData, scores, err := marshalExtraction(d)
	if err != nil {
		return err
	}
	_, err = r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO documents (`+documentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		d.ID.String(), d.Filename, d.SourcePath, d.FileExt, string(d.Format),
		nullUUID(d.OrderID), string(d.Status), d.FileSize,
		nullStr(d.ExtractedText), patientData, scores,
		nullFloat(d.ProcessingTime), nullStr(d.ErrorMessage),
		d.CreatedAt, d.UpdatedAt, nullTime(d.ProcessedAt),
	)
	if err != nil {
		r.logger.Error("failed to create document", "document_id", d.ID, "error", err)
		return common.WrapError(err, "create document")
	}
	r.activity.Log(ctx, constants.ActionCreate, constants.EntityDocument, d.ID.String(), map[string]any{
		"filename": d.Filename,
		"format":   string(d.Format),
	})
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`), id.String())
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, err
	}
	r.activity.Log(ctx, constants.ActionRead, constants.EntityDocument, id.String(), nil)
	return d, nil
}

func (r *documentRepository) List(ctx context.Context, skip, limit int) ([]*entity.Document, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC LIMIT ? OFFSET ?`),
		limit, skip,
	)
	if err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, err
	}
	defer rows.Close()

	out, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	r.activity.Log(ctx, constants.ActionList, constants.EntityDocument, "all", map[string]any{"count": len(out)})
	return out, nil
}

func (r *documentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.Document, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT `+documentColumns+` FROM documents WHERE order_id = ? ORDER BY created_at`),
		orderID.String(),
	)
	if err != nil {
		r.logger.Error("failed to list documents by order", "order_id", orderID, "error", err)
		return nil, err
	}
	defer rows.Close()

	out, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	r.activity.Log(ctx, constants.ActionList, constants.EntityDocument, orderID.String(), map[string]any{"count": len(out)})
	return out, nil
}

func (r *documentRepository) Update(ctx context.Context, d *entity.Document) error {
	patientData, scores, err := marshalExtraction(d)
	if err != nil {
		return err
	}
	d.UpdatedAt = time.Now().UTC()
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE documents SET order_id = ?, status = ?, extracted_text = ?, patient_data = ?,
		 confidence_scores = ?, processing_time = ?, error_message = ?, updated_at = ?, processed_at = ?
		 WHERE id = ?`),
		nullUUID(d.OrderID), string(d.Status), nullStr(d.ExtractedText), patientData, scores,
		nullFloat(d.ProcessingTime), nullStr(d.ErrorMessage), d.UpdatedAt, nullTime(d.ProcessedAt),
		d.ID.String(),
	)
	if err != nil {
		r.logger.Error("failed to update document", "document_id", d.ID, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	r.activity.Log(ctx, constants.ActionUpdate, constants.EntityDocument, d.ID.String(), map[string]any{
		"status": string(d.Status),
	})
	return nil
}

func marshalExtraction(d *entity.Document) (patientData, scores sql.NullString, err error) {
	if len(d.PatientData) > 0 {
		b, err := json.Marshal(d.PatientData)
		if err != nil {
			return patientData, scores, err
		}
		patientData = sql.NullString{String: string(b), Valid: true}
	}
	if len(d.ConfidenceScores) > 0 {
		b, err := json.Marshal(d.ConfidenceScores)
		if err != nil {
			return patientData, scores, err
		}
		scores = sql.NullString{String: string(b), Valid: true}
	}
	return patientData, scores, nil
}

func collectDocuments(rows *sql.Rows) ([]*entity.Document, error) {
	var out []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		d           entity.Document
		id          string
		format      string
		orderID     sql.NullString
		status      string
		text        sql.NullString
		patientData sql.NullString
		scores      sql.NullString
		procTime    sql.NullFloat64
		errMsg      sql.NullString
		processedAt sql.NullTime
	)
	err := row.Scan(&id, &d.Filename, &d.SourcePath, &d.FileExt, &format, &orderID, &status, &d.FileSize,
		&text, &patientData, &scores, &procTime, &errMsg,
		&d.CreatedAt, &d.UpdatedAt, &processedAt)
	if err != nil {
		return nil, err
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	d.Format = constants.Format(format)
	d.Status = constants.DocumentStatus(status)
	if orderID.Valid {
		oid, err := uuid.Parse(orderID.String)
		if err != nil {
			return nil, err
		}
		d.OrderID = &oid
	}
	d.ExtractedText = strPtr(text)
	if patientData.Valid {
		if err := json.Unmarshal([]byte(patientData.String), &d.PatientData); err != nil {
			return nil, err
		}
	}
	if scores.Valid {
		if err := json.Unmarshal([]byte(scores.String), &d.ConfidenceScores); err != nil {
			return nil, err
		}
	}
	if procTime.Valid {
		v := procTime.Float64
		d.ProcessingTime = &v
	}
	d.ErrorMessage = strPtr(errMsg)
	if processedAt.Valid {
		t := processedAt.Time
		d.ProcessedAt = &t
	}
	return &d, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
