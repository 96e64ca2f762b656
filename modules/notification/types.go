package notification

import (
	"time"

	"github.com/google/uuid"
)

// Channel is a delivery medium for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
	ChannelPush  Channel = "push"
)

// Priority expresses how urgent a notification is. It is carried through to
// the dashboard for display ordering; delivery itself does not reorder by it.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Status is the lifecycle state of a notification or queue entry.
//
// Notifications move pending → sent → (optionally) delivered/read, or
// pending → failed once the retry budget is exhausted. Queue entries only
// ever use pending, sent, and failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusRead      Status = "read"
)

// MaxAttempts is the delivery attempt budget for a queue entry. Once the
// retry count reaches this bound after a failed attempt, the entry is failed
// permanently and never re-selected.
const MaxAttempts = 3

// Notification is one logical delivery record for one channel of one event.
// It is the authoritative delivery status visible to the dashboard; queue
// entries are transport-layer bookkeeping behind it.
type Notification struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	Type         string            `json:"type"`
	Channel      Channel           `json:"channel"`
	Priority     Priority          `json:"priority"`
	Subject      string            `json:"subject,omitempty"`
	Message      string            `json:"message"`
	Data         map[string]string `json:"data,omitempty"`
	Status       Status            `json:"status"`
	ScheduledAt  time.Time         `json:"scheduled_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	ReadAt       *time.Time        `json:"read_at,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// EmailQueueEntry is a durable, retryable unit of email transport work.
type EmailQueueEntry struct {
	ID             uuid.UUID  `json:"id"`
	NotificationID uuid.UUID  `json:"notification_id"`
	Destination    string     `json:"destination"`
	Subject        string     `json:"subject"`
	BodyHTML       string     `json:"body_html"`
	BodyText       string     `json:"body_text"`
	Status         Status     `json:"status"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	RetryCount     int        `json:"retry_count"`
}

// SMSQueueEntry is a durable, retryable unit of SMS transport work.
// Message is already rendered and truncated to a single segment.
type SMSQueueEntry struct {
	ID             uuid.UUID  `json:"id"`
	NotificationID uuid.UUID  `json:"notification_id"`
	Destination    string     `json:"destination"`
	Message        string     `json:"message"`
	Status         Status     `json:"status"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	RetryCount     int        `json:"retry_count"`
}

// ChannelPrefs is the resolved set of enabled channels for one
// (user, notification type) pair.
type ChannelPrefs struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	InApp bool `json:"in_app"`
	Push  bool `json:"push"`
}

// DefaultChannelPrefs is the policy applied when a user has no stored
// preference row for a notification type: email and in-app on, SMS and push
// off (both are opt-in).
func DefaultChannelPrefs() ChannelPrefs {
	return ChannelPrefs{Email: true, InApp: true}
}

// Enabled returns the channels switched on in deterministic order.
func (p ChannelPrefs) Enabled() []Channel {
	var out []Channel
	if p.Email {
		out = append(out, ChannelEmail)
	}
	if p.SMS {
		out = append(out, ChannelSMS)
	}
	if p.InApp {
		out = append(out, ChannelInApp)
	}
	if p.Push {
		out = append(out, ChannelPush)
	}
	return out
}

// Preference is the stored per (user, notification type) channel enable row.
type Preference struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Type      string       `json:"type"`
	Channels  ChannelPrefs `json:"channels"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// PreferencePatch carries a partial preference update; nil fields keep their
// current value.
type PreferencePatch struct {
	Email *bool `json:"email,omitempty"`
	SMS   *bool `json:"sms,omitempty"`
	InApp *bool `json:"in_app,omitempty"`
	Push  *bool `json:"push,omitempty"`
}

// Template is an author-managed content template keyed by
// (notification type, channel). Read-only at delivery time.
type Template struct {
	ID              uuid.UUID `json:"id"`
	Type            string    `json:"type"`
	Channel         Channel   `json:"channel"`
	SubjectTemplate string    `json:"subject_template,omitempty"`
	BodyTemplate    string    `json:"body_template"`
	IsActive        bool      `json:"is_active"`
}

// Profile is the recipient contact information resolved from the user store.
type Profile struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
}

// ListFilter narrows GetUserNotifications results.
type ListFilter struct {
	Channel    Channel `json:"channel,omitempty"`
	Status     Status  `json:"status,omitempty"`
	UnreadOnly bool    `json:"unread_only,omitempty"`
	Limit      int     `json:"limit,omitempty"`
	Offset     int     `json:"offset,omitempty"`
}
