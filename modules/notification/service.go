package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridianvault/backoffice/pkg/sms"
)

// Stores bundles the storage dependencies of the Service. All fields are
// required except OptOut, which defaults to an empty in-memory list.
type Stores struct {
	Notifications NotificationStore
	Queue         QueueStore
	Preferences   PreferenceStore
	Templates     TemplateStore
	Profiles      ProfileStore
	OptOut        OptOutList
}

// Service is the notification dispatcher and the dashboard-facing API over
// stored notifications. Construct it once and share it; all methods are safe
// for concurrent use as long as the underlying stores are.
type Service struct {
	notifications NotificationStore
	queue         QueueStore
	preferences   PreferenceStore
	templates     TemplateStore
	profiles      ProfileStore
	optOut        OptOutList
	log           *slog.Logger
}

// NewService wires a Service from its storage dependencies.
// A nil logger falls back to slog.Default().
func NewService(stores Stores, log *slog.Logger) (*Service, error) {
	switch {
	case stores.Notifications == nil:
		return nil, errors.New("notification store is required")
	case stores.Queue == nil:
		return nil, errors.New("queue store is required")
	case stores.Preferences == nil:
		return nil, errors.New("preference store is required")
	case stores.Templates == nil:
		return nil, errors.New("template store is required")
	case stores.Profiles == nil:
		return nil, errors.New("profile store is required")
	}
	if stores.OptOut == nil {
		stores.OptOut = NewMemoryOptOutList()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		notifications: stores.Notifications,
		queue:         stores.Queue,
		preferences:   stores.Preferences,
		templates:     stores.Templates,
		profiles:      stores.Profiles,
		optOut:        stores.OptOut,
		log:           log,
	}, nil
}

// DispatchParams describes one logical event to deliver.
type DispatchParams struct {
	UserID      uuid.UUID         `json:"user_id"`
	Type        string            `json:"type"`
	Priority    Priority          `json:"priority,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data,omitempty"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
}

func (p DispatchParams) validate() error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrInvalidDispatch)
	}
	if p.Type == "" {
		return fmt.Errorf("%w: notification type is required", ErrInvalidDispatch)
	}
	if p.Message == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidDispatch)
	}
	return nil
}

// DispatchResult reports the per-channel outcome of one Dispatch call.
// NotificationIDs holds the rows that were created and set up for delivery;
// Errors holds the channels that could not be set up. Both can be non-empty
// at once - channels are independent.
type DispatchResult struct {
	NotificationIDs []uuid.UUID `json:"notification_ids"`
	Errors          []error     `json:"-"`
}

// Dispatch turns an event into per-channel deliveries for one user.
//
// The recipient profile is resolved first; without it nothing is created and
// the call errors. Preferences select the channels. For each enabled channel
// a Notification row is created synchronously, and for email/SMS a rendered
// queue entry alongside it - the transport send itself happens later, in
// Processor passes. A failure on one channel is collected into the result and
// never blocks the remaining channels.
func (s *Service) Dispatch(ctx context.Context, params DispatchParams) (DispatchResult, error) {
	var result DispatchResult

	if err := params.validate(); err != nil {
		return result, err
	}
	if params.Priority == "" {
		params.Priority = PriorityMedium
	}

	profile, err := s.profiles.GetProfile(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return result, fmt.Errorf("%w: user %s", ErrProfileNotFound, params.UserID)
		}
		return result, err
	}

	prefs, err := s.ResolvePreferences(ctx, params.UserID, params.Type)
	if err != nil {
		return result, err
	}

	now := time.Now().UTC()
	scheduledAt := now
	if params.ScheduledAt != nil {
		scheduledAt = params.ScheduledAt.UTC()
	}
	vars := templateVars(profile, params.Data)

	for _, channel := range prefs.Enabled() {
		var (
			id  uuid.UUID
			err error
		)
		switch channel {
		case ChannelEmail:
			id, err = s.dispatchEmail(ctx, params, profile, vars, scheduledAt, now)
		case ChannelSMS:
			id, err = s.dispatchSMS(ctx, params, profile, vars, scheduledAt, now)
		case ChannelInApp:
			id, err = s.dispatchInApp(ctx, params, scheduledAt, now)
		case ChannelPush:
			// Push delivery is not implemented; the channel is accepted so
			// preferences round-trip, but nothing is created.
			continue
		}
		if err != nil {
			s.log.WarnContext(ctx, "channel dispatch failed",
				slog.String("user_id", params.UserID.String()),
				slog.String("type", params.Type),
				slog.String("channel", string(channel)),
				slog.Any("error", err),
			)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", channel, err))
			continue
		}
		result.NotificationIDs = append(result.NotificationIDs, id)
	}

	return result, nil
}

func (s *Service) dispatchEmail(ctx context.Context, params DispatchParams, profile *Profile, vars map[string]string, scheduledAt, now time.Time) (uuid.UUID, error) {
	if profile.Email == "" {
		return uuid.Nil, fmt.Errorf("%w: user has no email address", ErrMissingDestination)
	}

	content, err := s.renderEmail(ctx, params.Type, vars, params.Subject, params.Message)
	if err != nil {
		return uuid.Nil, err
	}

	n := newNotification(params, ChannelEmail, scheduledAt, now)
	n.Subject = content.Subject
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return uuid.Nil, err
	}

	entry := &EmailQueueEntry{
		ID:             uuid.New(),
		NotificationID: n.ID,
		Destination:    profile.Email,
		Subject:        content.Subject,
		BodyHTML:       content.BodyHTML,
		BodyText:       content.BodyText,
		Status:         StatusPending,
		ScheduledAt:    scheduledAt,
	}
	if err := s.queue.EnqueueEmail(ctx, entry); err != nil {
		return uuid.Nil, err
	}
	return n.ID, nil
}

func (s *Service) dispatchSMS(ctx context.Context, params DispatchParams, profile *Profile, vars map[string]string, scheduledAt, now time.Time) (uuid.UUID, error) {
	if profile.Phone == "" {
		return uuid.Nil, fmt.Errorf("%w: user has no phone number", ErrMissingDestination)
	}
	if !sms.ValidPhone(profile.Phone) {
		return uuid.Nil, fmt.Errorf("%w: %q is not an E.164 phone number", ErrMissingDestination, profile.Phone)
	}

	optedOut, err := s.optOut.HasOptedOut(ctx, profile.Phone)
	if err != nil {
		return uuid.Nil, err
	}

	n := newNotification(params, ChannelSMS, scheduledAt, now)
	if optedOut {
		// An opt-out is a respected choice, not a failure: record the
		// notification as delivered with an explanation and queue nothing.
		n.Status = StatusDelivered
		n.ErrorMessage = "recipient has opted out of SMS notifications"
		if err := s.notifications.CreateNotification(ctx, n); err != nil {
			return uuid.Nil, err
		}
		return n.ID, nil
	}

	body, err := s.renderSMS(ctx, params.Type, vars, params.Message)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return uuid.Nil, err
	}

	entry := &SMSQueueEntry{
		ID:             uuid.New(),
		NotificationID: n.ID,
		Destination:    profile.Phone,
		Message:        body,
		Status:         StatusPending,
		ScheduledAt:    scheduledAt,
	}
	if err := s.queue.EnqueueSMS(ctx, entry); err != nil {
		return uuid.Nil, err
	}
	return n.ID, nil
}

func (s *Service) dispatchInApp(ctx context.Context, params DispatchParams, scheduledAt, now time.Time) (uuid.UUID, error) {
	// The stored row is the deliverable; no queue entry, no transport.
	n := newNotification(params, ChannelInApp, scheduledAt, now)
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return uuid.Nil, err
	}
	return n.ID, nil
}

// GetUserNotifications lists a user's notifications newest-first with the
// given filter, returning the page and the total match count.
func (s *Service) GetUserNotifications(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Notification, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.notifications.ListNotifications(ctx, userID, filter)
}

// MarkAsRead marks one notification as read. The user ID must match the
// notification's owner.
func (s *Service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifications.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead marks every unread notification of the user as read and
// returns how many rows changed.
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notifications.MarkAllAsRead(ctx, userID)
}

// DeleteNotification removes one notification. Deletion is explicit and
// user-driven; the subsystem never deletes rows on its own.
func (s *Service) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifications.DeleteNotification(ctx, id, userID)
}
