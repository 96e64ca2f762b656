package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// PassStats summarizes one processing pass for logging and the admin surface.
type PassStats struct {
	EmailProcessed int `json:"email_processed"`
	EmailSent      int `json:"email_sent"`
	SMSProcessed   int `json:"sms_processed"`
	SMSSent        int `json:"sms_sent"`
	Retried        int `json:"retried"`
	Failed         int `json:"failed"`
}

// Processor drains the per-channel queues and advances each entry through the
// pending → sent|failed state machine.
//
// A pass handles at most BatchSize entries per channel, email first, then
// SMS, sequentially within a channel. Sequential sends keep the retry
// bookkeeping race-free without row locks; the subsystem trades throughput
// for not double-sending.
type Processor struct {
	notifications NotificationStore
	queue         QueueStore
	email         EmailEntrySender
	sms           SMSEntrySender
	batchSize     int
	log           *slog.Logger
}

// NewProcessor wires a Processor. A nil logger falls back to slog.Default().
func NewProcessor(queue QueueStore, notifications NotificationStore, emailSender EmailEntrySender, smsSender SMSEntrySender, cfg Config, log *slog.Logger) *Processor {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		notifications: notifications,
		queue:         queue,
		email:         emailSender,
		sms:           smsSender,
		batchSize:     cfg.BatchSize,
		log:           log,
	}
}

// RunPass executes one full processing pass over both channel queues.
// A single entry's failure is recorded and logged, never propagated; only
// queue-level fetch errors surface to the caller.
func (p *Processor) RunPass(ctx context.Context) (PassStats, error) {
	var stats PassStats
	start := time.Now()

	if err := p.processEmailBatch(ctx, &stats); err != nil {
		return stats, err
	}
	if err := p.processSMSBatch(ctx, &stats); err != nil {
		return stats, err
	}

	if stats.EmailProcessed+stats.SMSProcessed > 0 {
		p.log.InfoContext(ctx, "processing pass finished",
			slog.Int("email_processed", stats.EmailProcessed),
			slog.Int("email_sent", stats.EmailSent),
			slog.Int("sms_processed", stats.SMSProcessed),
			slog.Int("sms_sent", stats.SMSSent),
			slog.Int("retried", stats.Retried),
			slog.Int("failed", stats.Failed),
			slog.Duration("took", time.Since(start)),
		)
	}
	return stats, nil
}

func (p *Processor) processEmailBatch(ctx context.Context, stats *PassStats) error {
	entries, err := p.queue.FetchPendingEmail(ctx, time.Now().UTC(), p.batchSize)
	if err != nil {
		return err
	}

	for i := range entries {
		entry := &entries[i]
		stats.EmailProcessed++

		msgID, err := p.email.SendEmailEntry(ctx, entry)
		if err != nil {
			p.recordFailure(ctx, ChannelEmail, entry.ID, entry.NotificationID, entry.RetryCount, err, stats)
			continue
		}
		p.recordSuccess(ctx, ChannelEmail, entry.ID, entry.NotificationID, msgID)
		stats.EmailSent++
	}
	return nil
}

func (p *Processor) processSMSBatch(ctx context.Context, stats *PassStats) error {
	entries, err := p.queue.FetchPendingSMS(ctx, time.Now().UTC(), p.batchSize)
	if err != nil {
		return err
	}

	for i := range entries {
		entry := &entries[i]
		stats.SMSProcessed++

		msgID, err := p.sms.SendSMSEntry(ctx, entry)
		if err != nil {
			p.recordFailure(ctx, ChannelSMS, entry.ID, entry.NotificationID, entry.RetryCount, err, stats)
			continue
		}
		p.recordSuccess(ctx, ChannelSMS, entry.ID, entry.NotificationID, msgID)
		stats.SMSSent++
	}
	return nil
}

// recordSuccess marks the entry and its parent notification sent. Bookkeeping
// errors are logged, not propagated: the message is already on the wire and a
// replayed send would be worse than a stale status row.
func (p *Processor) recordSuccess(ctx context.Context, channel Channel, entryID, notificationID uuid.UUID, msgID string) {
	now := time.Now().UTC()
	upd := EntryUpdate{Status: StatusSent, SentAt: &now}

	var err error
	if channel == ChannelEmail {
		err = p.queue.UpdateEmailEntry(ctx, entryID, upd)
	} else {
		err = p.queue.UpdateSMSEntry(ctx, entryID, upd)
	}
	if err != nil {
		p.log.ErrorContext(ctx, "failed to mark queue entry sent",
			slog.String("channel", string(channel)),
			slog.String("entry_id", entryID.String()),
			slog.Any("error", err),
		)
	}

	if err := p.notifications.UpdateDeliveryState(ctx, notificationID, StatusSent, &now, ""); err != nil {
		p.log.ErrorContext(ctx, "failed to mark notification sent",
			slog.String("notification_id", notificationID.String()),
			slog.Any("error", err),
		)
	}

	p.log.DebugContext(ctx, "queue entry sent",
		slog.String("channel", string(channel)),
		slog.String("entry_id", entryID.String()),
		slog.String("message_id", msgID),
	)
}

// recordFailure advances the retry bookkeeping after a failed attempt. The
// entry stays pending while attempts remain; once the budget is exhausted the
// entry and its parent notification are failed permanently.
func (p *Processor) recordFailure(ctx context.Context, channel Channel, entryID, notificationID uuid.UUID, retryCount int, sendErr error, stats *PassStats) {
	retryCount++
	exhausted := retryCount >= MaxAttempts

	upd := EntryUpdate{
		Status:       StatusPending,
		ErrorMessage: sendErr.Error(),
		RetryCount:   retryCount,
	}
	if exhausted {
		upd.Status = StatusFailed
	}

	var err error
	if channel == ChannelEmail {
		err = p.queue.UpdateEmailEntry(ctx, entryID, upd)
	} else {
		err = p.queue.UpdateSMSEntry(ctx, entryID, upd)
	}
	if err != nil {
		p.log.ErrorContext(ctx, "failed to record queue entry failure",
			slog.String("channel", string(channel)),
			slog.String("entry_id", entryID.String()),
			slog.Any("error", err),
		)
	}

	if exhausted {
		stats.Failed++
		if err := p.notifications.UpdateDeliveryState(ctx, notificationID, StatusFailed, nil, sendErr.Error()); err != nil {
			p.log.ErrorContext(ctx, "failed to mark notification failed",
				slog.String("notification_id", notificationID.String()),
				slog.Any("error", err),
			)
		}
		p.log.WarnContext(ctx, "queue entry failed permanently",
			slog.String("channel", string(channel)),
			slog.String("entry_id", entryID.String()),
			slog.Int("attempts", retryCount),
			slog.Any("error", sendErr),
		)
		return
	}

	stats.Retried++
	p.log.WarnContext(ctx, "queue entry send failed, will retry",
		slog.String("channel", string(channel)),
		slog.String("entry_id", entryID.String()),
		slog.Int("attempt", retryCount),
		slog.Any("error", sendErr),
	)
}
