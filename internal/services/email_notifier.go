package services

import (
	"context"
	"fmt"
	"time"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/platform/sendgrid"
)

// emailNotifier mails the counterpart when a session is booked or cancelled.
// Other lifecycle events are realtime only.
type emailNotifier struct {
	nopNotifier
	log    *logger.Logger
	client sendgrid.Client
	// async is false in tests so sends are observable synchronously.
	async bool
}

func NewEmailNotifier(log *logger.Logger, client sendgrid.Client) SessionNotifier {
	if client == nil {
		return nopNotifier{}
	}
	return &emailNotifier{log: log.With("service", "EmailNotifier"), client: client, async: true}
}

func (n *emailNotifier) SessionScheduled(ctx context.Context, s *types.Session) {
	if s == nil || s.Teacher == nil {
		return
	}
	learner := "A learner"
	if s.Learner != nil {
		learner = s.Learner.FullName()
	}
	n.send(ctx, s.Teacher, "New session booked: "+s.Title,
		fmt.Sprintf("%s booked \"%s\" with you for %s.", learner, s.Title, s.ScheduledStartTime.UTC().Format(time.RFC1123)))
}

func (n *emailNotifier) SessionCancelled(ctx context.Context, s *types.Session) {
	if s == nil || s.CancelledBy == nil {
		return
	}
	to := s.Teacher
	if *s.CancelledBy == s.TeacherID {
		to = s.Learner
	}
	if to == nil {
		return
	}
	body := fmt.Sprintf("\"%s\" scheduled for %s was cancelled.", s.Title, s.ScheduledStartTime.UTC().Format(time.RFC1123))
	if s.CancellationReason != "" {
		body += " Reason: " + s.CancellationReason
	}
	n.send(ctx, to, "Session cancelled: "+s.Title, body)
}

func (n *emailNotifier) send(ctx context.Context, to *types.User, subject, text string) {
	req := sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: to.Email, Name: to.FullName()}},
		Subject:    subject,
		Text:       text,
		Categories: []string{"session"},
	}
	run := func(ctx context.Context) {
		if _, err := n.client.Send(ctx, req); err != nil {
			n.log.Warn("session email failed", "subject", subject, "error", err)
		}
	}
	if !n.async {
		run(ctx)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		run(ctx)
	}()
}

type multiSessionNotifier []SessionNotifier

// FanoutSessionNotifier calls every notifier in order.
func FanoutSessionNotifier(notifiers ...SessionNotifier) SessionNotifier {
	out := multiSessionNotifier{}
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multiSessionNotifier) SessionScheduled(ctx context.Context, s *types.Session) {
	for _, n := range m {
		n.SessionScheduled(ctx, s)
	}
}

func (m multiSessionNotifier) SessionStarted(ctx context.Context, s *types.Session) {
	for _, n := range m {
		n.SessionStarted(ctx, s)
	}
}

func (m multiSessionNotifier) SessionCompleted(ctx context.Context, s *types.Session, minutes int) {
	for _, n := range m {
		n.SessionCompleted(ctx, s, minutes)
	}
}

func (m multiSessionNotifier) SessionCancelled(ctx context.Context, s *types.Session) {
	for _, n := range m {
		n.SessionCancelled(ctx, s)
	}
}

func (m multiSessionNotifier) SessionRated(ctx context.Context, r *types.Rating) {
	for _, n := range m {
		n.SessionRated(ctx, r)
	}
}
