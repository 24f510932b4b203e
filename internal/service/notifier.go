package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/pkg/config"
	"github.com/nitap-dev/mentor-portal-api/pkg/jobs"
	"github.com/nitap-dev/mentor-portal-api/pkg/mailer"
)

const jobTypeMeetingScheduled = "meeting.scheduled"

type meetingNotification struct {
	Meeting    models.Meeting
	Organizer  string
	Recipients []mailer.Address
}

// MeetingNotifier fans meeting emails out through a bounded in-memory
// queue. Enqueueing never blocks the request path longer than the
// configured timeout, and delivery is at most once: a full queue or a
// provider failure drops the notification with a log line, it never
// fails the meeting itself.
type MeetingNotifier struct {
	queue   *jobs.Queue
	mailer  mailer.Mailer
	metrics *MetricsService
	timeout time.Duration
	logger  *zap.Logger
}

// NewMeetingNotifier constructs the notifier and its worker queue.
func NewMeetingNotifier(m mailer.Mailer, metrics *MetricsService, cfg config.NotifyConfig, logger *zap.Logger) *MeetingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &MeetingNotifier{mailer: m, metrics: metrics, timeout: cfg.EnqueueTimeout, logger: logger}
	n.queue = jobs.NewQueue("meeting-notifications", n.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: 0,
		Logger:     logger,
	})
	return n
}

// Start launches the worker pool.
func (n *MeetingNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains in-flight jobs and stops the workers.
func (n *MeetingNotifier) Stop() {
	n.queue.Stop()
}

// MeetingScheduled enqueues notification emails for a freshly created
// meeting. Errors are logged and swallowed.
func (n *MeetingNotifier) MeetingScheduled(meeting models.Meeting, organizer string, recipients []mailer.Address) {
	if len(recipients) == 0 {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeMeetingScheduled,
		Payload: meetingNotification{Meeting: meeting, Organizer: organizer, Recipients: recipients},
	}
	if err := n.queue.TryEnqueue(job, n.timeout); err != nil {
		n.metrics.NotificationDropped()
		n.logger.Warn("meeting notification dropped",
			zap.String("meeting_id", meeting.ID),
			zap.Error(err))
	}
}

func (n *MeetingNotifier) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(meetingNotification)
	if !ok {
		return fmt.Errorf("unexpected payload for job %s", job.ID)
	}

	msg := mailer.Message{
		To:       payload.Recipients,
		Subject:  fmt.Sprintf("Mentor meeting scheduled for %s", payload.Meeting.Date.Format("02 Jan 2006")),
		TextBody: buildMeetingBody(payload.Meeting, payload.Organizer),
	}

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := n.mailer.Send(sendCtx, msg); err != nil {
		n.metrics.NotificationFailed()
		n.logger.Warn("meeting notification delivery failed",
			zap.String("meeting_id", payload.Meeting.ID),
			zap.Int("recipients", len(payload.Recipients)),
			zap.Error(err))
		return err
	}

	n.metrics.NotificationSent()
	n.logger.Info("meeting notification sent",
		zap.String("meeting_id", payload.Meeting.ID),
		zap.Int("recipients", len(payload.Recipients)))
	return nil
}

func buildMeetingBody(m models.Meeting, organizer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A mentor meeting has been scheduled by %s.\n\n", organizer)
	fmt.Fprintf(&b, "Date: %s\n", m.Date.Format("Monday, 02 January 2006"))
	fmt.Fprintf(&b, "Time: %s\n", m.Time)
	if m.Description != "" {
		fmt.Fprintf(&b, "Agenda: %s\n", m.Description)
	}
	b.WriteString("\nPlease be present on time.\n")
	return b.String()
}
