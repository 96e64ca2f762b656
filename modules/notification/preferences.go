package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ResolvePreferences returns the enabled-channel set for a user and
// notification type. A missing preference row is the normal case and resolves
// to the default policy; only storage failures propagate.
func (s *Service) ResolvePreferences(ctx context.Context, userID uuid.UUID, notifType string) (ChannelPrefs, error) {
	pref, err := s.preferences.GetPreference(ctx, userID, notifType)
	if err != nil {
		if errors.Is(err, ErrPreferenceNotFound) {
			return DefaultChannelPrefs(), nil
		}
		return ChannelPrefs{}, err
	}
	return pref.Channels, nil
}

// UpdatePreferences applies a partial preference update for one notification
// type. Flags not present in the patch keep their current value; the first
// update for a type starts from the default policy.
func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, notifType string, patch PreferencePatch) (*Preference, error) {
	if notifType == "" {
		return nil, errors.Join(ErrInvalidDispatch, errors.New("notification type is required"))
	}
	return s.preferences.UpsertPreference(ctx, userID, notifType, patch)
}

// apply merges a patch into an existing preference set. Shared by the store
// implementations so upsert semantics stay identical across backends.
func (p PreferencePatch) apply(current ChannelPrefs) ChannelPrefs {
	if p.Email != nil {
		current.Email = *p.Email
	}
	if p.SMS != nil {
		current.SMS = *p.SMS
	}
	if p.InApp != nil {
		current.InApp = *p.InApp
	}
	if p.Push != nil {
		current.Push = *p.Push
	}
	return current
}
