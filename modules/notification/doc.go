// Package notification implements the delivery subsystem behind the
// backoffice dashboard: it turns a logical event ("SKR issued", "invoice
// overdue", "client approved") into per-channel deliveries, honoring user
// channel preferences, rendering channel-specific content, queuing email and
// SMS work durably, and retrying transient transport failures a bounded
// number of times before marking permanent failure.
//
// # Architecture
//
// The package is organized around a handful of cooperating pieces:
//
//   - Service is the entry point. Dispatch resolves the recipient profile and
//     preferences, creates one Notification row per enabled channel, renders
//     content, and enqueues email/SMS queue entries. It also exposes the
//     read-side API used by the dashboard (listing, mark-as-read, delete,
//     preference updates).
//
//   - Processor drains the per-channel queues in fixed-size batches, invokes
//     the matching transport through pkg/email and pkg/sms, and advances each
//     entry through the pending → sent|failed state machine with bounded
//     retries.
//
//   - Scheduler runs the Processor on a fixed interval with an overlap guard,
//     and exposes Start/Stop/RunOnce/Status for operational control. It is an
//     explicit object with injected dependencies, constructed once at process
//     startup.
//
//   - Storage interfaces (NotificationStore, QueueStore, PreferenceStore,
//     TemplateStore) abstract the durable store. A Postgres implementation on
//     pgx/v5 ships alongside an in-memory implementation used in tests and
//     local development.
//
// # Delivery semantics
//
// Delivery is at-least-once per channel: enqueue is synchronous with
// Dispatch, transport sends happen asynchronously in Processor passes, and a
// failed send is retried on later passes until the attempt budget (3) is
// exhausted. Channels are independent - one channel's failure never blocks
// another's delivery - and a single queue entry's failure never aborts the
// rest of its batch. In-app notifications need no transport: the Notification
// row itself is the deliverable. Push is accepted as a channel but delivery
// is a recorded no-op.
//
// The subsystem assumes a single active Scheduler instance; running several
// concurrently may double-send.
package notification
