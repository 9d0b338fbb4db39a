package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vmarchenko/contacts-api/internal/email"
	"github.com/vmarchenko/contacts-api/internal/metrics"
	"github.com/vmarchenko/contacts-api/internal/repository"
)

// Digest emails each verified user a list of their contacts whose
// birthday falls within the next windowDays days.
type Digest struct {
	contacts   repository.ContactRepository
	email      email.Sender
	logger     *slog.Logger
	sched      cron.Schedule
	windowDays int
}

func New(contacts repository.ContactRepository, sender email.Sender, logger *slog.Logger, cronExpr string, windowDays int) (*Digest, error) {
	sched, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse digest cron %q: %w", cronExpr, err)
	}
	return &Digest{
		contacts:   contacts,
		email:      sender,
		logger:     logger.With("component", "digest"),
		sched:      sched,
		windowDays: windowDays,
	}, nil
}

func (d *Digest) Start(ctx context.Context) {
	d.logger.Info("digest started", "window_days", d.windowDays)

	for {
		next := d.sched.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info("digest shut down")
			return
		case <-timer.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("digest cycle", "error", err)
			}
		}
	}
}

// RunOnce performs a single digest cycle. A failed email for one user
// does not stop delivery to the rest.
func (d *Digest) RunOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.DigestCycleDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.DigestRunsTotal.Inc()

	reminders, err := d.contacts.UpcomingBirthdays(ctx, d.windowDays)
	if err != nil {
		return fmt.Errorf("upcoming birthdays: %w", err)
	}
	if len(reminders) == 0 {
		return nil
	}

	// Reminders arrive ordered by owner email; group into one email each.
	byOwner := make(map[string][]string)
	var owners []string
	for _, rem := range reminders {
		if _, seen := byOwner[rem.OwnerEmail]; !seen {
			owners = append(owners, rem.OwnerEmail)
		}
		line := fmt.Sprintf("<li>%s — %s</li>", rem.ContactName, rem.Birthday.Format("January 2"))
		byOwner[rem.OwnerEmail] = append(byOwner[rem.OwnerEmail], line)
	}

	for _, owner := range owners {
		body := fmt.Sprintf(
			"<p>Birthdays in the next %d days:</p><ul>%s</ul>",
			d.windowDays, strings.Join(byOwner[owner], ""),
		)
		if err := d.email.Send(ctx, owner, "Upcoming birthdays", body); err != nil {
			metrics.DigestEmailsTotal.WithLabelValues("error").Inc()
			d.logger.Error("send digest", "email", owner, "error", err)
			continue
		}
		metrics.DigestEmailsTotal.WithLabelValues("ok").Inc()
	}

	d.logger.Info("digest cycle complete", "reminders", len(reminders), "recipients", len(owners))
	return nil
}
