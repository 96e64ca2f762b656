package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianvault/backoffice/pkg/pg"
)

// PostgresStore implements NotificationStore, QueueStore, PreferenceStore and
// TemplateStore on a pgx connection pool. All writes are scoped to a single
// row, so concurrent dispatchers for different notifications never contend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connected pool. Run the package migrations before
// first use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateNotification(ctx context.Context, n *Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, channel, priority, subject, message, data, status, scheduled_at, sent_at, read_at, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		n.ID, n.UserID, n.Type, n.Channel, n.Priority, n.Subject, n.Message, data,
		n.Status, n.ScheduledAt, n.SentAt, n.ReadAt, n.ErrorMessage, n.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, type, channel, priority, subject, message, data, status, scheduled_at, sent_at, read_at, error_message, created_at
		FROM notifications WHERE id = $1`, id)

	n, err := scanNotification(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *PostgresStore) UpdateDeliveryState(ctx context.Context, id uuid.UUID, status Status, sentAt *time.Time, errorMessage string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = $2, sent_at = COALESCE($3, sent_at), error_message = $4
		WHERE id = $1`,
		id, status, sentAt, errorMessage,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Notification, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Channel != "" {
		args = append(args, filter.Channel)
		where = append(where, fmt.Sprintf("channel = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UnreadOnly {
		where = append(where, "read_at IS NULL")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM notifications WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, type, channel, priority, subject, message, data, status, scheduled_at, sent_at, read_at, error_message, created_at
		FROM notifications WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = now(), status = $3
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		id, userID, StatusRead,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish "already read" (fine) from "not yours / missing".
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)`,
			id, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotificationNotFound
		}
	}
	return nil
}

func (s *PostgresStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = now(), status = $2
		WHERE user_id = $1 AND read_at IS NULL`,
		userID, StatusRead,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *PostgresStore) EnqueueEmail(ctx context.Context, e *EmailQueueEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO email_queue (id, notification_id, destination, subject, body_html, body_text, status, scheduled_at, sent_at, error_message, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.NotificationID, e.Destination, e.Subject, e.BodyHTML, e.BodyText,
		e.Status, e.ScheduledAt, e.SentAt, e.ErrorMessage, e.RetryCount,
	)
	return err
}

func (s *PostgresStore) EnqueueSMS(ctx context.Context, e *SMSQueueEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sms_queue (id, notification_id, destination, message, status, scheduled_at, sent_at, error_message, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.NotificationID, e.Destination, e.Message,
		e.Status, e.ScheduledAt, e.SentAt, e.ErrorMessage, e.RetryCount,
	)
	return err
}

func (s *PostgresStore) FetchPendingEmail(ctx context.Context, now time.Time, limit int) ([]EmailQueueEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, notification_id, destination, subject, body_html, body_text, status, scheduled_at, sent_at, error_message, retry_count
		FROM email_queue
		WHERE status = $1 AND scheduled_at <= $2 AND retry_count < $3
		ORDER BY scheduled_at ASC
		LIMIT $4`,
		StatusPending, now, MaxAttempts, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmailQueueEntry
	for rows.Next() {
		var e EmailQueueEntry
		if err := rows.Scan(&e.ID, &e.NotificationID, &e.Destination, &e.Subject, &e.BodyHTML, &e.BodyText,
			&e.Status, &e.ScheduledAt, &e.SentAt, &e.ErrorMessage, &e.RetryCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FetchPendingSMS(ctx context.Context, now time.Time, limit int) ([]SMSQueueEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, notification_id, destination, message, status, scheduled_at, sent_at, error_message, retry_count
		FROM sms_queue
		WHERE status = $1 AND scheduled_at <= $2 AND retry_count < $3
		ORDER BY scheduled_at ASC
		LIMIT $4`,
		StatusPending, now, MaxAttempts, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SMSQueueEntry
	for rows.Next() {
		var e SMSQueueEntry
		if err := rows.Scan(&e.ID, &e.NotificationID, &e.Destination, &e.Message,
			&e.Status, &e.ScheduledAt, &e.SentAt, &e.ErrorMessage, &e.RetryCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateEmailEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE email_queue
		SET status = $2, sent_at = COALESCE($3, sent_at), error_message = $4, retry_count = $5
		WHERE id = $1`,
		id, upd.Status, upd.SentAt, upd.ErrorMessage, upd.RetryCount,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateSMSEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sms_queue
		SET status = $2, sent_at = COALESCE($3, sent_at), error_message = $4, retry_count = $5
		WHERE id = $1`,
		id, upd.Status, upd.SentAt, upd.ErrorMessage, upd.RetryCount,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *PostgresStore) GetPreference(ctx context.Context, userID uuid.UUID, notifType string) (*Preference, error) {
	var p Preference
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, type, email_enabled, sms_enabled, in_app_enabled, push_enabled, updated_at
		FROM notification_preferences
		WHERE user_id = $1 AND type = $2`,
		userID, notifType,
	).Scan(&p.ID, &p.UserID, &p.Type, &p.Channels.Email, &p.Channels.SMS, &p.Channels.InApp, &p.Channels.Push, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPreferenceNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) UpsertPreference(ctx context.Context, userID uuid.UUID, notifType string, patch PreferencePatch) (*Preference, error) {
	// Read-modify-write inside a transaction; the row lock keeps concurrent
	// patches for the same (user, type) pair from clobbering each other.
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	p := Preference{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     notifType,
		Channels: DefaultChannelPrefs(),
	}
	err = tx.QueryRow(ctx, `
		SELECT id, email_enabled, sms_enabled, in_app_enabled, push_enabled
		FROM notification_preferences
		WHERE user_id = $1 AND type = $2
		FOR UPDATE`,
		userID, notifType,
	).Scan(&p.ID, &p.Channels.Email, &p.Channels.SMS, &p.Channels.InApp, &p.Channels.Push)
	if err != nil && !pg.IsNotFoundError(err) {
		return nil, err
	}

	p.Channels = patch.apply(p.Channels)
	p.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
		INSERT INTO notification_preferences (id, user_id, type, email_enabled, sms_enabled, in_app_enabled, push_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, type) DO UPDATE
		SET email_enabled = EXCLUDED.email_enabled,
		    sms_enabled = EXCLUDED.sms_enabled,
		    in_app_enabled = EXCLUDED.in_app_enabled,
		    push_enabled = EXCLUDED.push_enabled,
		    updated_at = EXCLUDED.updated_at`,
		p.ID, p.UserID, p.Type, p.Channels.Email, p.Channels.SMS, p.Channels.InApp, p.Channels.Push, p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetTemplate(ctx context.Context, notifType string, channel Channel) (*Template, error) {
	var t Template
	err := s.pool.QueryRow(ctx, `
		SELECT id, type, channel, subject_template, body_template, is_active
		FROM notification_templates
		WHERE type = $1 AND channel = $2 AND is_active`,
		notifType, channel,
	).Scan(&t.ID, &t.Type, &t.Channel, &t.SubjectTemplate, &t.BodyTemplate, &t.IsActive)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

// scanNotification reads one notifications row from either QueryRow or Rows.
func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		n    Notification
		data []byte
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Channel, &n.Priority, &n.Subject, &n.Message, &data,
		&n.Status, &n.ScheduledAt, &n.SentAt, &n.ReadAt, &n.ErrorMessage, &n.CreatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}
