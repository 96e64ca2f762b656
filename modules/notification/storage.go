package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationStore persists notification rows and serves the dashboard
// read side. Implementations return ErrNotificationNotFound for missing or
// foreign rows (ownership is enforced at the storage layer: mutations require
// a matching user ID).
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error)
	// UpdateDeliveryState is the processor's hook: it moves a notification to
	// sent/delivered/failed and records the transport outcome.
	UpdateDeliveryState(ctx context.Context, id uuid.UUID, status Status, sentAt *time.Time, errorMessage string) error
	ListNotifications(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Notification, int, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteNotification(ctx context.Context, id, userID uuid.UUID) error
}

// EntryUpdate carries the processor's per-attempt bookkeeping for a queue
// entry. RetryCount is absolute, not a delta.
type EntryUpdate struct {
	Status       Status
	SentAt       *time.Time
	ErrorMessage string
	RetryCount   int
}

// QueueStore is the durable per-channel delivery queue.
//
// FetchPending selects entries with status pending, scheduled_at at or before
// now, and retry_count below MaxAttempts, oldest-first, bounded by limit.
// Exhausted entries are excluded by that filter permanently.
type QueueStore interface {
	EnqueueEmail(ctx context.Context, e *EmailQueueEntry) error
	EnqueueSMS(ctx context.Context, e *SMSQueueEntry) error
	FetchPendingEmail(ctx context.Context, now time.Time, limit int) ([]EmailQueueEntry, error)
	FetchPendingSMS(ctx context.Context, now time.Time, limit int) ([]SMSQueueEntry, error)
	UpdateEmailEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) error
	UpdateSMSEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) error
}

// PreferenceStore persists per (user, notification type) channel preferences.
// GetPreference returns ErrPreferenceNotFound when no row exists; callers
// treat that as the default policy, not an error.
type PreferenceStore interface {
	GetPreference(ctx context.Context, userID uuid.UUID, notifType string) (*Preference, error)
	UpsertPreference(ctx context.Context, userID uuid.UUID, notifType string, patch PreferencePatch) (*Preference, error)
}

// TemplateStore serves author-managed content templates. GetTemplate returns
// ErrTemplateNotFound when no active template exists for the pair; dispatch
// falls back to the raw event message.
type TemplateStore interface {
	GetTemplate(ctx context.Context, notifType string, channel Channel) (*Template, error)
}

// ProfileStore resolves recipient contact details from the external user
// store. Returns ErrProfileNotFound for unknown users.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
}

// OptOutList answers recipient-level SMS suppression checks. An opted-out
// number short-circuits dispatch regardless of preference settings.
type OptOutList interface {
	HasOptedOut(ctx context.Context, phone string) (bool, error)
}
