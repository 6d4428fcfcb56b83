package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityLog represents a record stored in activity_logs.
type ActivityLog struct {
	TenantID   *uuid.UUID
	UserID     uuid.UUID
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]any
	At         time.Time
}

// ActivityLogger writes records into activity_logs. Recording is best effort:
// callers log failures and continue.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the log entry.
func (l *ActivityLogger) Record(ctx context.Context, log ActivityLog) error {
	if l == nil {
		return errors.New("activity logger not initialised")
	}
	if log.Action == "" || log.TargetType == "" {
		return errors.New("activity log requires action/target_type")
	}
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return err
	}
	at := log.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO activity_logs (tenant_id, user_id, user_type, action, target_type, target_id, details, occurred_at)
		 VALUES ($1, $2, 'user', $3, $4, $5, $6, $7)`,
		log.TenantID, log.UserID, log.Action, log.TargetType, log.TargetID, detailsJSON, at)
	return err
}
