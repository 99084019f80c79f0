package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinops/docintake/internal/entity"
)

// ActivityRepository records and reads the audit trail. Every repository
// mutation writes a row here.
type ActivityRepository interface {
	Log(ctx context.Context, action, entityType, entityID string, details map[string]any)
	List(ctx context.Context, skip, limit int) ([]*entity.ActivityLog, error)
}

type activityRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewActivityRepository(db *DB, logger *slog.Logger) ActivityRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &activityRepository{db: db, logger: logger}
}

// Log inserts an audit row. Failures are logged, not returned: an audit
// hiccup must not fail the operation being audited.
func (r *activityRepository) Log(ctx context.Context, action, entityType, entityID string, details map[string]any) {
	var detailsJSON sql.NullString
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = sql.NullString{String: string(b), Valid: true}
		}
	}

	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO activity_logs (id, action, entity_type, entity_id, details, ts)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.New().String(), action, entityType, entityID, detailsJSON, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("failed to log activity", "action", action, "entity_type", entityType, "entity_id", entityID, "error", err)
		return
	}
	r.logger.Info("activity logged", "action", action, "entity_type", entityType, "entity_id", entityID)
}

func (r *activityRepository) List(ctx context.Context, skip, limit int) ([]*entity.ActivityLog, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT id, action, entity_type, entity_id, details, ts
		 FROM activity_logs ORDER BY ts DESC LIMIT ? OFFSET ?`),
		limit, skip,
	)
	if err != nil {
		r.logger.Error("failed to list activity logs", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.ActivityLog
	for rows.Next() {
		var (
			log     entity.ActivityLog
			id      string
			details sql.NullString
		)
		if err := rows.Scan(&id, &log.Action, &log.EntityType, &log.EntityID, &details, &log.Timestamp); err != nil {
			return nil, err
		}
		if log.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if details.Valid {
			log.Details = json.RawMessage(details.String)
		}
		out = append(out, &log)
	}
	return out, rows.Err()
}
