package notification

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of NotificationStore,
// QueueStore, PreferenceStore and TemplateStore, used in tests and local
// development. All methods deep-copy on the way in and out so callers can
// never alias internal state. Safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]Notification
	emailQueue    map[uuid.UUID]EmailQueueEntry
	smsQueue      map[uuid.UUID]SMSQueueEntry
	preferences   map[prefKey]Preference
	templates     map[templateKey]Template
}

type prefKey struct {
	userID uuid.UUID
	typ    string
}

type templateKey struct {
	typ     string
	channel Channel
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications: make(map[uuid.UUID]Notification),
		emailQueue:    make(map[uuid.UUID]EmailQueueEntry),
		smsQueue:      make(map[uuid.UUID]SMSQueueEntry),
		preferences:   make(map[prefKey]Preference),
		templates:     make(map[templateKey]Template),
	}
}

func cloneNotification(n Notification) Notification {
	n.Data = maps.Clone(n.Data)
	if n.SentAt != nil {
		t := *n.SentAt
		n.SentAt = &t
	}
	if n.ReadAt != nil {
		t := *n.ReadAt
		n.ReadAt = &t
	}
	return n
}

func (s *MemoryStore) CreateNotification(ctx context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = cloneNotification(*n)
	return nil
}

func (s *MemoryStore) GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	out := cloneNotification(n)
	return &out, nil
}

func (s *MemoryStore) UpdateDeliveryState(ctx context.Context, id uuid.UUID, status Status, sentAt *time.Time, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.Status = status
	n.ErrorMessage = errorMessage
	if sentAt != nil {
		t := *sentAt
		n.SentAt = &t
	}
	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) ListNotifications(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if filter.Channel != "" && n.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.UnreadOnly && n.ReadAt != nil {
			continue
		}
		matched = append(matched, cloneNotification(n))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *MemoryStore) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotificationNotFound
	}
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
		n.Status = StatusRead
		s.notifications[id] = n
	}
	return nil
}

func (s *MemoryStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	count := 0
	for id, n := range s.notifications {
		if n.UserID != userID || n.ReadAt != nil {
			continue
		}
		t := now
		n.ReadAt = &t
		n.Status = StatusRead
		s.notifications[id] = n
		count++
	}
	return count, nil
}

func (s *MemoryStore) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotificationNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *MemoryStore) EnqueueEmail(ctx context.Context, e *EmailQueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailQueue[e.ID] = *e
	return nil
}

func (s *MemoryStore) EnqueueSMS(ctx context.Context, e *SMSQueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.smsQueue[e.ID] = *e
	return nil
}

func (s *MemoryStore) FetchPendingEmail(ctx context.Context, now time.Time, limit int) ([]EmailQueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []EmailQueueEntry
	for _, e := range s.emailQueue {
		if e.Status == StatusPending && !e.ScheduledAt.After(now) && e.RetryCount < MaxAttempts {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) FetchPendingSMS(ctx context.Context, now time.Time, limit int) ([]SMSQueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SMSQueueEntry
	for _, e := range s.smsQueue {
		if e.Status == StatusPending && !e.ScheduledAt.After(now) && e.RetryCount < MaxAttempts {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateEmailEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.emailQueue[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Status = upd.Status
	e.ErrorMessage = upd.ErrorMessage
	e.RetryCount = upd.RetryCount
	if upd.SentAt != nil {
		t := *upd.SentAt
		e.SentAt = &t
	}
	s.emailQueue[id] = e
	return nil
}

func (s *MemoryStore) UpdateSMSEntry(ctx context.Context, id uuid.UUID, upd EntryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.smsQueue[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Status = upd.Status
	e.ErrorMessage = upd.ErrorMessage
	e.RetryCount = upd.RetryCount
	if upd.SentAt != nil {
		t := *upd.SentAt
		e.SentAt = &t
	}
	s.smsQueue[id] = e
	return nil
}

// EmailEntry returns a queue entry by ID for inspection in tests.
func (s *MemoryStore) EmailEntry(id uuid.UUID) (EmailQueueEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.emailQueue[id]
	return e, ok
}

// SMSEntry returns a queue entry by ID for inspection in tests.
func (s *MemoryStore) SMSEntry(id uuid.UUID) (SMSQueueEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.smsQueue[id]
	return e, ok
}

// EmailEntriesFor returns the email queue entries owned by a notification.
func (s *MemoryStore) EmailEntriesFor(notificationID uuid.UUID) []EmailQueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []EmailQueueEntry
	for _, e := range s.emailQueue {
		if e.NotificationID == notificationID {
			out = append(out, e)
		}
	}
	return out
}

// SMSEntriesFor returns the SMS queue entries owned by a notification.
func (s *MemoryStore) SMSEntriesFor(notificationID uuid.UUID) []SMSQueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []SMSQueueEntry
	for _, e := range s.smsQueue {
		if e.NotificationID == notificationID {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryStore) GetPreference(ctx context.Context, userID uuid.UUID, notifType string) (*Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.preferences[prefKey{userID: userID, typ: notifType}]
	if !ok {
		return nil, ErrPreferenceNotFound
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) UpsertPreference(ctx context.Context, userID uuid.UUID, notifType string, patch PreferencePatch) (*Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := prefKey{userID: userID, typ: notifType}
	p, ok := s.preferences[key]
	if !ok {
		p = Preference{
			ID:       uuid.New(),
			UserID:   userID,
			Type:     notifType,
			Channels: DefaultChannelPrefs(),
		}
	}
	p.Channels = patch.apply(p.Channels)
	p.UpdatedAt = time.Now().UTC()
	s.preferences[key] = p

	out := p
	return &out, nil
}

func (s *MemoryStore) GetTemplate(ctx context.Context, notifType string, channel Channel) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[templateKey{typ: notifType, channel: channel}]
	if !ok || !t.IsActive {
		return nil, ErrTemplateNotFound
	}
	out := t
	return &out, nil
}

// PutTemplate stores a content template; author-managed data in production,
// seeded directly in tests.
func (s *MemoryStore) PutTemplate(t Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.templates[templateKey{typ: t.Type, channel: t.Channel}] = t
}

// MemoryProfileStore is an in-memory ProfileStore for tests and local
// development.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]Profile
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[uuid.UUID]Profile)}
}

// Put stores a profile for a user.
func (s *MemoryProfileStore) Put(userID uuid.UUID, p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = p
}

func (s *MemoryProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	out := p
	return &out, nil
}
