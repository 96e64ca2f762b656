package notification

import "errors"

// Domain errors, designed for errors.Is checks and wrapping with context.
var (
	ErrProfileNotFound      = errors.New("notification.errors.profile_not_found")
	ErrNotificationNotFound = errors.New("notification.errors.notification_not_found")
	ErrPreferenceNotFound   = errors.New("notification.errors.preference_not_found")
	ErrTemplateNotFound     = errors.New("notification.errors.template_not_found")
	ErrEntryNotFound        = errors.New("notification.errors.queue_entry_not_found")
	ErrInvalidDispatch      = errors.New("notification.errors.invalid_dispatch_params")
	ErrMissingDestination   = errors.New("notification.errors.missing_destination")
	ErrSchedulerRunning     = errors.New("notification.errors.scheduler_already_running")
	ErrPassInProgress       = errors.New("notification.errors.processing_pass_in_progress")
)
