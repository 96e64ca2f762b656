package notification

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/meridianvault/backoffice/pkg/template"
)

// emailContent is the rendered payload queued for one email delivery.
type emailContent struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// templateVars builds the substitution map for rendering: the recipient's
// display name plus the event's data payload. Payload keys win on collision
// so events can override user_name when they carry a better value.
func templateVars(profile *Profile, data map[string]string) map[string]string {
	vars := make(map[string]string, len(data)+1)
	vars["user_name"] = profile.FullName
	maps.Copy(vars, data)
	return vars
}

// renderEmail produces the email subject and bodies for an event. When no
// active template exists for (type, email), the raw subject and message are
// used as-is; the plain-text body is always derived from the HTML one.
func (s *Service) renderEmail(ctx context.Context, notifType string, vars map[string]string, fallbackSubject, fallbackMessage string) (emailContent, error) {
	tmpl, err := s.templates.GetTemplate(ctx, notifType, ChannelEmail)
	if err != nil {
		if !errors.Is(err, ErrTemplateNotFound) {
			return emailContent{}, err
		}
		return emailContent{
			Subject:  fallbackSubject,
			BodyHTML: fallbackMessage,
			BodyText: template.HTMLToText(fallbackMessage),
		}, nil
	}

	subject := template.Render(tmpl.SubjectTemplate, vars)
	if subject == "" {
		subject = fallbackSubject
	}
	html := template.Render(tmpl.BodyTemplate, vars)
	return emailContent{
		Subject:  subject,
		BodyHTML: html,
		BodyText: template.HTMLToText(html),
	}, nil
}

// renderSMS produces the single-segment SMS body for an event, truncating to
// the 160-character limit. Falls back to the raw message when no active
// template exists for (type, sms).
func (s *Service) renderSMS(ctx context.Context, notifType string, vars map[string]string, fallbackMessage string) (string, error) {
	tmpl, err := s.templates.GetTemplate(ctx, notifType, ChannelSMS)
	if err != nil {
		if !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
		return template.TruncateSMS(fallbackMessage), nil
	}
	return template.TruncateSMS(template.Render(tmpl.BodyTemplate, vars)), nil
}

// newNotification assembles the per-channel notification row created during
// dispatch.
func newNotification(params DispatchParams, channel Channel, scheduledAt, createdAt time.Time) *Notification {
	return &Notification{
		ID:          uuid.New(),
		UserID:      params.UserID,
		Type:        params.Type,
		Channel:     channel,
		Priority:    params.Priority,
		Subject:     params.Subject,
		Message:     params.Message,
		Data:        params.Data,
		Status:      StatusPending,
		ScheduledAt: scheduledAt,
		CreatedAt:   createdAt,
	}
}
