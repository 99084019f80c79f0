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

type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepository struct {
	db       *DB
	activity ActivityRepository
	logger   *slog.Logger
}

func NewOrderRepository(db *DB, activity ActivityRepository, logger *slog.Logger) OrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderRepository{db: db, activity: activity, logger: logger}
}

func (r *orderRepository) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO orders (id, patient_id, order_type, description, status, created_at, updated_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID.String(), nullUUID(o.PatientID), o.OrderType, nullStr(o.Description),
		string(o.Status), o.CreatedAt, o.UpdatedAt, nullTime(o.CompletedAt),
	)
	if err != nil {
		r.logger.Error("failed to create order", "order_id", o.ID, "error", err)
		return common.WrapError(err, "create order")
	}
	r.activity.Log(ctx, constants.ActionCreate, constants.EntityOrder, o.ID.String(), map[string]any{
		"order_type": o.OrderType,
	})
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, patient_id, order_type, description, status, created_at, updated_at, completed_at
		 FROM orders WHERE id = ?`),
		id.String(),
	)
	o, err := r.scanOrder(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get order", "order_id", id, "error", err)
		return nil, err
	}
	r.activity.Log(ctx, constants.ActionRead, constants.EntityOrder, id.String(), nil)
	return o, nil
}

func (r *orderRepository) List(ctx context.Context, skip, limit int) ([]*entity.Order, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT id, patient_id, order_type, description, status, created_at, updated_at, completed_at
		 FROM orders ORDER BY created_at DESC LIMIT ? OFFSET ?`),
		limit, skip,
	)
	if err != nil {
		r.logger.Error("failed to list orders", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o, err := r.scanOrder(ctx, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.activity.Log(ctx, constants.ActionList, constants.EntityOrder, "all", map[string]any{"count": len(out)})
	return out, nil
}

func (r *orderRepository) Update(ctx context.Context, o *entity.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE orders SET patient_id = ?, order_type = ?, description = ?, status = ?, updated_at = ?, completed_at = ?
		 WHERE id = ?`),
		nullUUID(o.PatientID), o.OrderType, nullStr(o.Description), string(o.Status),
		o.UpdatedAt, nullTime(o.CompletedAt), o.ID.String(),
	)
	if err != nil {
		r.logger.Error("failed to update order", "order_id", o.ID, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	r.activity.Log(ctx, constants.ActionUpdate, constants.EntityOrder, o.ID.String(), map[string]any{
		"status": string(o.Status),
	})
	return nil
}

// Delete removes the order and detaches its documents. Documents survive the
// order so extraction results are never lost to an order cleanup.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE documents SET order_id = NULL WHERE order_id = ?`), id.String()); err != nil {
		r.logger.Error("failed to detach order documents", "order_id", id, "error", err)
		return err
	}
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`DELETE FROM orders WHERE id = ?`), id.String())
	if err != nil {
		r.logger.Error("failed to delete order", "order_id", id, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	r.activity.Log(ctx, constants.ActionDelete, constants.EntityOrder, id.String(), nil)
	return nil
}

func (r *orderRepository) scanOrder(ctx context.Context, row rowScanner) (*entity.Order, error) {
	var (
		o           entity.Order
		id          string
		patientID   sql.NullString
		description sql.NullString
		status      string
		completedAt sql.NullTime
	)
	if err := row.Scan(&id, &patientID, &o.OrderType, &description, &status, &o.CreatedAt, &o.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	var err error
	if o.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if patientID.Valid {
		pid, err := uuid.Parse(patientID.String)
		if err != nil {
			return nil, err
		}
		o.PatientID = &pid
	}
	o.Description = strPtr(description)
	o.Status = constants.OrderStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		o.CompletedAt = &t
	}
	o.Documents, err = r.documentIDs(ctx, o.ID)
	return &o, err
}

func (r *orderRepository) documentIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT id FROM documents WHERE order_id = ? ORDER BY created_at`), orderID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullUUID(p *uuid.UUID) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.String(), Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}
