package notification_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianvault/backoffice/modules/notification"
)

type testEnv struct {
	svc      *notification.Service
	store    *notification.MemoryStore
	profiles *notification.MemoryProfileStore
	optOut   *notification.MemoryOptOutList
}

func newTestEnv(t *testing.T, optedOut ...string) *testEnv {
	t.Helper()

	store := notification.NewMemoryStore()
	profiles := notification.NewMemoryProfileStore()
	optOut := notification.NewMemoryOptOutList(optedOut...)

	svc, err := notification.NewService(notification.Stores{
		Notifications: store,
		Queue:         store,
		Preferences:   store,
		Templates:     store,
		Profiles:      profiles,
		OptOut:        optOut,
	}, nil)
	require.NoError(t, err)

	return &testEnv{svc: svc, store: store, profiles: profiles, optOut: optOut}
}

func (e *testEnv) addUser(t *testing.T, p notification.Profile) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	e.profiles.Put(userID, p)
	return userID
}

func boolPtr(b bool) *bool { return &b }

func TestNewService(t *testing.T) {
	t.Parallel()

	store := notification.NewMemoryStore()
	profiles := notification.NewMemoryProfileStore()

	t.Run("missing notification store", func(t *testing.T) {
		t.Parallel()
		_, err := notification.NewService(notification.Stores{
			Queue:       store,
			Preferences: store,
			Templates:   store,
			Profiles:    profiles,
		}, nil)
		require.Error(t, err)
	})

	t.Run("missing profile store", func(t *testing.T) {
		t.Parallel()
		_, err := notification.NewService(notification.Stores{
			Notifications: store,
			Queue:         store,
			Preferences:   store,
			Templates:     store,
		}, nil)
		require.Error(t, err)
	})

	t.Run("opt-out list is optional", func(t *testing.T) {
		t.Parallel()
		svc, err := notification.NewService(notification.Stores{
			Notifications: store,
			Queue:         store,
			Preferences:   store,
			Templates:     store,
			Profiles:      profiles,
		}, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestDispatch_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params notification.DispatchParams
	}{
		{"missing user id", notification.DispatchParams{Type: "invoice_paid", Message: "paid"}},
		{"missing type", notification.DispatchParams{UserID: uuid.New(), Message: "paid"}},
		{"missing message", notification.DispatchParams{UserID: uuid.New(), Type: "invoice_paid"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := env.svc.Dispatch(ctx, tt.params)
			require.ErrorIs(t, err, notification.ErrInvalidDispatch)
		})
	}
}

func TestDispatch_ProfileNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  uuid.New(),
		Type:    "invoice_paid",
		Message: "Your invoice was paid.",
	})
	require.ErrorIs(t, err, notification.ErrProfileNotFound)
	assert.Empty(t, result.NotificationIDs)

	// Nothing is created when the recipient cannot be resolved.
	_, total, err := env.store.ListNotifications(ctx, uuid.Nil, notification.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDispatch_DefaultPreferences(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "ops@example.com",
		Phone:    "+15550001111",
		FullName: "Dana Vik",
	})

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "invoice_paid",
		Subject: "Invoice paid",
		Message: "Your invoice was paid.",
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	// Without a stored preference row, email and in-app are on, SMS is off.
	require.Len(t, result.NotificationIDs, 2)

	items, total, err := env.store.ListNotifications(ctx, userID, notification.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	channels := make(map[notification.Channel]notification.Notification, len(items))
	for _, n := range items {
		channels[n.Channel] = n
	}
	require.Contains(t, channels, notification.ChannelEmail)
	require.Contains(t, channels, notification.ChannelInApp)
	assert.NotContains(t, channels, notification.ChannelSMS)

	assert.Equal(t, notification.PriorityMedium, channels[notification.ChannelEmail].Priority)
	assert.Equal(t, notification.StatusPending, channels[notification.ChannelEmail].Status)

	emailEntries := env.store.EmailEntriesFor(channels[notification.ChannelEmail].ID)
	require.Len(t, emailEntries, 1)
	assert.Equal(t, "ops@example.com", emailEntries[0].Destination)
	assert.Equal(t, notification.StatusPending, emailEntries[0].Status)

	// In-app deliveries are the stored row itself, never queued.
	assert.Empty(t, env.store.EmailEntriesFor(channels[notification.ChannelInApp].ID))
	assert.Empty(t, env.store.SMSEntriesFor(channels[notification.ChannelInApp].ID))
}

func TestDispatch_AllChannels(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		Phone:    "+15550002222",
		FullName: "Dana Vik",
	})

	_, err := env.svc.UpdatePreferences(ctx, userID, "withdrawal_approved", notification.PreferencePatch{
		SMS:  boolPtr(true),
		Push: boolPtr(true),
	})
	require.NoError(t, err)

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:   userID,
		Type:     "withdrawal_approved",
		Priority: notification.PriorityHigh,
		Subject:  "Withdrawal approved",
		Message:  "Your withdrawal of 2,500 USD was approved.",
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	// Push is accepted but not delivered, so three rows: email, SMS, in-app.
	require.Len(t, result.NotificationIDs, 3)

	items, _, err := env.store.ListNotifications(ctx, userID, notification.ListFilter{})
	require.NoError(t, err)

	var smsID uuid.UUID
	for _, n := range items {
		assert.Equal(t, notification.PriorityHigh, n.Priority)
		assert.NotEqual(t, notification.ChannelPush, n.Channel)
		if n.Channel == notification.ChannelSMS {
			smsID = n.ID
		}
	}

	smsEntries := env.store.SMSEntriesFor(smsID)
	require.Len(t, smsEntries, 1)
	assert.Equal(t, "+15550002222", smsEntries[0].Destination)
	assert.Equal(t, "Your withdrawal of 2,500 USD was approved.", smsEntries[0].Message)
}

func TestDispatch_TemplateRendering(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		FullName: "Dana Vik",
	})

	env.store.PutTemplate(notification.Template{
		Type:            "invoice_paid",
		Channel:         notification.ChannelEmail,
		SubjectTemplate: "Invoice {{invoice_no}} paid",
		BodyTemplate:    "<p>Hi {{user_name}},</p><p>invoice {{invoice_no}} for {{amount}} is settled.</p>",
		IsActive:        true,
	})

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "invoice_paid",
		Subject: "fallback subject",
		Message: "fallback message",
		Data:    map[string]string{"invoice_no": "INV-042", "amount": "120.00 EUR"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	items, _, err := env.store.ListNotifications(ctx, userID, notification.ListFilter{Channel: notification.ChannelEmail})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Invoice INV-042 paid", items[0].Subject)

	entries := env.store.EmailEntriesFor(items[0].ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "Invoice INV-042 paid", entries[0].Subject)
	assert.Contains(t, entries[0].BodyHTML, "Hi Dana Vik,")
	assert.Contains(t, entries[0].BodyHTML, "INV-042")
	assert.NotContains(t, entries[0].BodyText, "<p>")
	assert.Contains(t, entries[0].BodyText, "invoice INV-042 for 120.00 EUR is settled.")
}

func TestDispatch_TemplateFallback(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		FullName: "Dana Vik",
	})

	// Inactive templates are invisible to rendering.
	env.store.PutTemplate(notification.Template{
		Type:         "invoice_paid",
		Channel:      notification.ChannelEmail,
		BodyTemplate: "should not be used",
		IsActive:     false,
	})

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "invoice_paid",
		Subject: "Invoice paid",
		Message: "Your invoice was paid.",
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	items, _, err := env.store.ListNotifications(ctx, userID, notification.ListFilter{Channel: notification.ChannelEmail})
	require.NoError(t, err)
	require.Len(t, items, 1)

	entries := env.store.EmailEntriesFor(items[0].ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "Invoice paid", entries[0].Subject)
	assert.Equal(t, "Your invoice was paid.", entries[0].BodyHTML)
}

func TestDispatch_SMSTruncation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		Phone:    "+15550003333",
		FullName: "Dana Vik",
	})

	_, err := env.svc.UpdatePreferences(ctx, userID, "security_alert", notification.PreferencePatch{
		Email: boolPtr(false),
		InApp: boolPtr(false),
		SMS:   boolPtr(true),
	})
	require.NoError(t, err)

	long := strings.Repeat("suspicious login attempt detected ", 10)
	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "security_alert",
		Message: long,
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.NotificationIDs, 1)

	entries := env.store.SMSEntriesFor(result.NotificationIDs[0])
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Message, 160)
	assert.True(t, strings.HasSuffix(entries[0].Message, "..."))
}

func TestDispatch_SMSOptOut(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "+15550004444")
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		Phone:    "+15550004444",
		FullName: "Dana Vik",
	})

	_, err := env.svc.UpdatePreferences(ctx, userID, "security_alert", notification.PreferencePatch{
		SMS: boolPtr(true),
	})
	require.NoError(t, err)

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "security_alert",
		Message: "New device login.",
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	items, _, err := env.store.ListNotifications(ctx, userID, notification.ListFilter{Channel: notification.ChannelSMS})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// The opt-out is recorded as delivered, with the reason, and nothing queued.
	assert.Equal(t, notification.StatusDelivered, items[0].Status)
	assert.Equal(t, "recipient has opted out of SMS notifications", items[0].ErrorMessage)
	assert.Empty(t, env.store.SMSEntriesFor(items[0].ID))
}

func TestDispatch_ChannelIsolation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	// No phone number on file: the SMS channel must fail without touching
	// email or in-app.
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		FullName: "Dana Vik",
	})

	_, err := env.svc.UpdatePreferences(ctx, userID, "security_alert", notification.PreferencePatch{
		SMS: boolPtr(true),
	})
	require.NoError(t, err)

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "security_alert",
		Subject: "Security alert",
		Message: "New device login.",
	})
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], notification.ErrMissingDestination)
	assert.Len(t, result.NotificationIDs, 2) // email + in-app still created

	items, _, err := env.store.ListNotifications(ctx, userID, notification.ListFilter{})
	require.NoError(t, err)
	for _, n := range items {
		assert.NotEqual(t, notification.ChannelSMS, n.Channel)
	}
}

func TestDispatch_InvalidPhone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		Phone:    "not-a-phone",
		FullName: "Dana Vik",
	})

	_, err := env.svc.UpdatePreferences(ctx, userID, "security_alert", notification.PreferencePatch{
		Email: boolPtr(false),
		InApp: boolPtr(false),
		SMS:   boolPtr(true),
	})
	require.NoError(t, err)

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "security_alert",
		Message: "New device login.",
	})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], notification.ErrMissingDestination)
	assert.Empty(t, result.NotificationIDs)
}

func TestDispatch_ScheduledAt(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		FullName: "Dana Vik",
	})

	future := time.Now().Add(2 * time.Hour).UTC()
	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:      userID,
		Type:        "maintenance_window",
		Subject:     "Scheduled maintenance",
		Message:     "Maintenance starts soon.",
		ScheduledAt: &future,
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	items, _, err := env.store.ListNotifications(ctx, userID, notification.ListFilter{Channel: notification.ChannelEmail})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].ScheduledAt.Equal(future))

	entries := env.store.EmailEntriesFor(items[0].ID)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].ScheduledAt.Equal(future))
}

func TestGetUserNotifications(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		FullName: "Dana Vik",
	})
	otherID := env.addUser(t, notification.Profile{
		Email:    "other@example.com",
		FullName: "Other User",
	})

	for i := 0; i < 3; i++ {
		_, err := env.svc.Dispatch(ctx, notification.DispatchParams{
			UserID:  userID,
			Type:    "invoice_paid",
			Message: "Invoice paid.",
		})
		require.NoError(t, err)
	}
	_, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  otherID,
		Type:    "invoice_paid",
		Message: "Invoice paid.",
	})
	require.NoError(t, err)

	t.Run("scoped to the user", func(t *testing.T) {
		t.Parallel()
		items, total, err := env.svc.GetUserNotifications(ctx, userID, notification.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 6, total) // 3 dispatches x (email + in_app)
		for _, n := range items {
			assert.Equal(t, userID, n.UserID)
		}
	})

	t.Run("channel filter", func(t *testing.T) {
		t.Parallel()
		items, total, err := env.svc.GetUserNotifications(ctx, userID, notification.ListFilter{
			Channel: notification.ChannelInApp,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		for _, n := range items {
			assert.Equal(t, notification.ChannelInApp, n.Channel)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		t.Parallel()
		items, total, err := env.svc.GetUserNotifications(ctx, userID, notification.ListFilter{
			Limit:  2,
			Offset: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, 6, total)
		assert.Len(t, items, 2)
	})
}

func TestReadLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, notification.Profile{
		Email:    "dana@example.com",
		FullName: "Dana Vik",
	})
	strangerID := uuid.New()

	result, err := env.svc.Dispatch(ctx, notification.DispatchParams{
		UserID:  userID,
		Type:    "invoice_paid",
		Message: "Invoice paid.",
	})
	require.NoError(t, err)
	require.Len(t, result.NotificationIDs, 2)
	id := result.NotificationIDs[0]

	t.Run("stranger cannot mark read", func(t *testing.T) {
		err := env.svc.MarkAsRead(ctx, id, strangerID)
		require.ErrorIs(t, err, notification.ErrNotificationNotFound)
	})

	t.Run("owner marks read", func(t *testing.T) {
		require.NoError(t, env.svc.MarkAsRead(ctx, id, userID))

		items, _, err := env.svc.GetUserNotifications(ctx, userID, notification.ListFilter{UnreadOnly: true})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("mark all read", func(t *testing.T) {
		count, err := env.svc.MarkAllAsRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, total, err := env.svc.GetUserNotifications(ctx, userID, notification.ListFilter{UnreadOnly: true})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("delete is owner-scoped", func(t *testing.T) {
		require.ErrorIs(t, env.svc.DeleteNotification(ctx, id, strangerID), notification.ErrNotificationNotFound)
		require.NoError(t, env.svc.DeleteNotification(ctx, id, userID))
		require.ErrorIs(t, env.svc.DeleteNotification(ctx, id, userID), notification.ErrNotificationNotFound)
	})
}
