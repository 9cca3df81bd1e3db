package service

import (
	"context"
	"errors"
	"time"

	"company-invites/internal/domain"
	"company-invites/internal/logger"
)

const StatusCreationFailed = "User creation failed"

var errNoDeliveryStatus = errors.New("email provider returned no status")

// Notifier emails each provisioned user their credentials
type Notifier struct {
	sender   EmailSender
	composer InviteComposer
	opts     BatchOptions
}

func NewNotifier(sender EmailSender, composer InviteComposer, opts BatchOptions) *Notifier {
	return &Notifier{sender: sender, composer: composer, opts: opts}
}

// Notify sends one email per successfully provisioned item. Items whose
// creation failed are never sent.
func (n *Notifier) Notify(ctx context.Context, items []domain.ProvisioningOutcome) []domain.NotificationOutcome {
	start := time.Now()
	created := func(i int) bool { return items[i].CreationSuccess }
	logger.StageStarted("notify", len(items), countWhere(len(items), created))

	settled := settle(ctx, n.opts, len(items), created, func(ctx context.Context, i int) (*domain.DeliveryStatus, error) {
		subject, html, err := n.composer.Compose(items[i])
		if err != nil {
			return nil, err
		}
		return n.sender.Send(ctx, items[i].Email, subject, html)
	})

	out := make([]domain.NotificationOutcome, len(items))
	sent, failed := 0, 0
	for i, item := range items {
		out[i] = domain.NotificationOutcome{ProvisioningOutcome: item}
		s := settled[i]
		switch {
		case !s.attempted:
			out[i].Status = StatusCreationFailed
			continue
		case s.err != nil:
			out[i].EmailError = s.err.Error()
		case s.value == nil:
			out[i].EmailError = errNoDeliveryStatus.Error()
		default:
			out[i].Status = s.value.Status
			out[i].EmailSuccess = s.value.OK()
		}
		if out[i].EmailSuccess {
			sent++
		} else {
			failed++
		}
	}

	logger.StageSettled("notify", sent, failed, time.Since(start))
	return out
}

func countWhere(n int, pred func(i int) bool) int {
	c := 0
	for i := 0; i < n; i++ {
		if pred(i) {
			c++
		}
	}
	return c
}
