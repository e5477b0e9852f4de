package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"community-lending/internal/domain/apperr"
	"community-lending/internal/domain/member"
	domain "community-lending/internal/domain/notification"
	"community-lending/internal/infrastructure/metrics"
)

// Deduper remembers delivery keys for a window.
type Deduper interface {
	FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Publisher pushes a created notification to an external channel.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

type recipient struct {
	userID string
	admin  bool
}

// Fanout turns a loan event into one notification per recipient. It is
// best-effort: failures are logged and counted, never returned.
type Fanout struct {
	members member.Repository
	repo    domain.Repository
	log     zerolog.Logger
	metrics *metrics.Metrics

	dedupe Deduper
	window time.Duration
	pub    Publisher
}

func NewFanout(members member.Repository, repo domain.Repository, log zerolog.Logger, m *metrics.Metrics) *Fanout {
	return &Fanout{members: members, repo: repo, log: log.With().Str("component", "notification_fanout").Logger(), metrics: m}
}

// WithDedupe suppresses a repeat of the same event for the same loan and
// recipient on the same UTC day while window lasts. A zero window disables it.
func (f *Fanout) WithDedupe(d Deduper, window time.Duration) *Fanout {
	f.dedupe, f.window = d, window
	return f
}

func (f *Fanout) WithPublisher(p Publisher) *Fanout {
	f.pub = p
	return f
}

// ListForUser returns the member's inbox, newest first.
func (f *Fanout) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	if _, err := f.members.GetByUserID(ctx, userID); err != nil {
		return nil, apperr.Transient(err, "list notifications: load member")
	}
	out, err := f.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Transient(err, "list notifications")
	}
	return out, nil
}

func (f *Fanout) Notify(ctx context.Context, ev Event) Result {
	var res Result
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	log := f.log.With().Str("event", string(ev.Kind)).Str("loan_id", ev.Loan.LoanID).Logger()

	recipients, borrowerName, err := f.recipients(ctx, ev)
	if err != nil {
		log.Error().Err(err).Msg("resolve notification recipients")
		f.count(ev.Kind, "failed", 1)
		res.Failed++
		return res
	}

	for _, rc := range recipients {
		rlog := log.With().Str("recipient", rc.userID).Logger()
		if !f.firstDelivery(ctx, ev, rc.userID, rlog) {
			res.Skipped++
			f.count(ev.Kind, "deduped", 1)
			continue
		}

		msg := borrowerMessage(ev)
		if rc.admin {
			msg = adminMessage(ev, borrowerName)
		}
		n := &domain.Notification{
			UserID:            rc.userID,
			Title:             msg.title,
			Message:           msg.body,
			Type:              msg.typ,
			RelatedEntityType: domain.EntityLoan,
			RelatedEntityID:   ev.Loan.LoanID,
		}
		if _, err := f.repo.Create(ctx, n); err != nil {
			rlog.Warn().Err(err).Msg("create notification")
			res.Failed++
			f.count(ev.Kind, "failed", 1)
			continue
		}
		res.Sent++
		f.count(ev.Kind, "sent", 1)

		if f.pub != nil {
			if err := f.pub.Publish(ctx, *n); err != nil {
				rlog.Warn().Err(err).Str("notification_id", n.NotificationID).Msg("publish notification")
			}
		}
	}
	return res
}

func (f *Fanout) recipients(ctx context.Context, ev Event) ([]recipient, string, error) {
	var out []recipient
	aud := audienceOf(ev.Kind)
	if aud == borrowerOnly || aud == borrowerAndAdmins {
		out = append(out, recipient{userID: ev.Loan.BorrowerID})
	}
	if aud == borrowerOnly {
		return out, "", nil
	}

	admins, err := f.members.ListActiveAdmins(ctx)
	if err != nil {
		return nil, "", err
	}
	for _, a := range admins {
		out = append(out, recipient{userID: a.UserID, admin: true})
	}

	name := ev.Loan.BorrowerID
	if u, err := f.members.GetByUserID(ctx, ev.Loan.BorrowerID); err == nil {
		name = u.DisplayName()
	}
	return out, name, nil
}

// firstDelivery applies the dedupe window. An unavailable store never
// suppresses a notification.
func (f *Fanout) firstDelivery(ctx context.Context, ev Event, userID string, log zerolog.Logger) bool {
	if f.dedupe == nil || f.window <= 0 {
		return true
	}
	key := fmt.Sprintf("%s:%s:%s:%s", ev.Kind, ev.Loan.LoanID, userID, ev.At.UTC().Format(dateLayout))
	first, err := f.dedupe.FirstSeen(ctx, key, f.window)
	if err != nil {
		log.Warn().Err(err).Msg("notification dedupe store unavailable, sending anyway")
		return true
	}
	return first
}

func (f *Fanout) count(kind EventKind, result string, n int) {
	if f.metrics == nil {
		return
	}
	f.metrics.Notifications.WithLabelValues(string(kind), result).Add(float64(n))
}
