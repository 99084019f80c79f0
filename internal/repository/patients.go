package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/common"
	"github.com/clinops/docintake/internal/entity"
)

type PatientRepository interface {
	Create(ctx context.Context, p *entity.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Patient, error)
	FindByName(ctx context.Context, firstName, lastName string) (*entity.Patient, error)
	Update(ctx context.Context, p *entity.Patient) error
}

type patientRepository struct {
	db       *DB
	activity ActivityRepository
	logger   *slog.Logger
}

func NewPatientRepository(db *DB, activity ActivityRepository, logger *slog.Logger) PatientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &patientRepository{db: db, activity: activity, logger: logger}
}

func (r *patientRepository) Create(ctx context.Context, p *entity.Patient) error {
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO patients (id, first_name, last_name, date_of_birth, extracted_from, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID.String(), nullStr(p.FirstName), nullStr(p.LastName), nullStr(p.DateOfBirth),
		nullStr(p.ExtractedFrom), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create patient", "patient_id", p.ID, "error", err)
		return common.WrapError(err, "create patient")
	}
	r.activity.Log(ctx, constants.ActionCreate, constants.EntityPatient, p.ID.String(), nil)
	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, first_name, last_name, date_of_birth, extracted_from, created_at, updated_at
		 FROM patients WHERE id = ?`),
		id.String(),
	)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get patient", "patient_id", id, "error", err)
		return nil, err
	}
	r.activity.Log(ctx, constants.ActionRead, constants.EntityPatient, id.String(), nil)
	return p, nil
}

func (r *patientRepository) List(ctx context.Context, skip, limit int) ([]*entity.Patient, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT id, first_name, last_name, date_of_birth, extracted_from, created_at, updated_at
		 FROM patients ORDER BY created_at DESC LIMIT ? OFFSET ?`),
		limit, skip,
	)
	if err != nil {
		r.logger.Error("failed to list patients", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.activity.Log(ctx, constants.ActionList, constants.EntityPatient, "all", map[string]any{"count": len(out)})
	return out, nil
}

func (r *patientRepository) FindByName(ctx context.Context, firstName, lastName string) (*entity.Patient, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, first_name, last_name, date_of_birth, extracted_from, created_at, updated_at
		 FROM patients WHERE lower(first_name) = lower(?) AND lower(last_name) = lower(?)
		 ORDER BY created_at LIMIT 1`),
		firstName, lastName,
	)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to find patient by name", "error", err)
		return nil, err
	}
	return p, nil
}

func (r *patientRepository) Update(ctx context.Context, p *entity.Patient) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE patients SET first_name = ?, last_name = ?, date_of_birth = ?, extracted_from = ?, updated_at = ?
		 WHERE id = ?`),
		nullStr(p.FirstName), nullStr(p.LastName), nullStr(p.DateOfBirth), nullStr(p.ExtractedFrom),
		p.UpdatedAt, p.ID.String(),
	)
	if err != nil {
		r.logger.Error("failed to update patient", "patient_id", p.ID, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	r.activity.Log(ctx, constants.ActionUpdate, constants.EntityPatient, p.ID.String(), nil)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*entity.Patient, error) {
	var (
		p         entity.Patient
		id        string
		first     sql.NullString
		last      sql.NullString
		dob       sql.NullString
		extracted sql.NullString
	)
	if err := row.Scan(&id, &first, &last, &dob, &extracted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	p.FirstName = strPtr(first)
	p.LastName = strPtr(last)
	p.DateOfBirth = strPtr(dob)
	p.ExtractedFrom = strPtr(extracted)
	return &p, nil
}

func nullStr(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
