package shared

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification is an in-app message for a single user.
type Notification struct {
	TenantID *uuid.UUID
	UserID   uuid.UUID
	Kind     string
	Title    string
	Message  string
	Data     map[string]any
}

// NotificationStore persists notification rows. Like activity logging, it is
// best effort and must never abort the triggering business operation.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// NewNotificationStore constructs the store.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// Push inserts a notification for one user.
func (s *NotificationStore) Push(ctx context.Context, n Notification) error {
	if s == nil {
		return errors.New("notification store not initialised")
	}
	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO notifications (tenant_id, user_id, type, title, message, data)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.TenantID, n.UserID, n.Kind, n.Title, n.Message, dataJSON)
	return err
}

// PushToFacultyAdmins fans a notification out to every active faculty admin of
// the given tenant+faculty.
func (s *NotificationStore) PushToFacultyAdmins(ctx context.Context, tenantID, facultyID uuid.UUID, n Notification) error {
	if s == nil {
		return errors.New("notification store not initialised")
	}
	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO notifications (tenant_id, user_id, type, title, message, data)
		 SELECT $1, u.id, $2, $3, $4, $5
		 FROM users u
		 WHERE u.tenant_id = $1 AND u.faculty_id = $6 AND u.role = 'faculty_admin' AND u.is_active = true`,
		tenantID, n.Kind, n.Title, n.Message, dataJSON, facultyID)
	return err
}
