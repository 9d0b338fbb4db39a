package digest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vmarchenko/contacts-api/internal/digest"
	"github.com/vmarchenko/contacts-api/internal/domain"
	"github.com/vmarchenko/contacts-api/internal/email"
)

type fakeContactRepo struct {
	upcoming func(ctx context.Context, days int) ([]*domain.BirthdayReminder, error)
}

func (r *fakeContactRepo) Create(_ context.Context, _ *domain.Contact) (*domain.Contact, error) {
	panic("not used")
}
func (r *fakeContactRepo) ListByOwner(_ context.Context, _ string, _, _ int) ([]*domain.Contact, error) {
	panic("not used")
}
func (r *fakeContactRepo) GetByID(_ context.Context, _ string) (*domain.Contact, error) {
	panic("not used")
}
func (r *fakeContactRepo) Update(_ context.Context, _ *domain.Contact) (*domain.Contact, error) {
	panic("not used")
}
func (r *fakeContactRepo) Delete(_ context.Context, _, _ string) error {
	panic("not used")
}
func (r *fakeContactRepo) UpcomingBirthdays(ctx context.Context, days int) ([]*domain.BirthdayReminder, error) {
	return r.upcoming(ctx, days)
}

type fakeSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

var _ email.Sender = (*fakeSender)(nil)

func newDigest(t *testing.T, repo *fakeContactRepo, sender *fakeSender) *digest.Digest {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := digest.New(repo, sender, logger, "0 8 * * *", 7)
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}
	return d
}

func bday(month time.Month, day int) time.Time {
	return time.Date(1990, month, day, 0, 0, 0, 0, time.UTC)
}

func TestRunOnce_OneEmailPerOwner(t *testing.T) {
	repo := &fakeContactRepo{
		upcoming: func(_ context.Context, days int) ([]*domain.BirthdayReminder, error) {
			if days != 7 {
				t.Errorf("window = %d, want 7", days)
			}
			return []*domain.BirthdayReminder{
				{OwnerEmail: "a@example.com", ContactName: "Olena", Birthday: bday(time.June, 3)},
				{OwnerEmail: "a@example.com", ContactName: "Petro", Birthday: bday(time.June, 5)},
				{OwnerEmail: "b@example.com", ContactName: "Iryna", Birthday: bday(time.June, 4)},
			}, nil
		},
	}

	got := map[string]string{}
	sender := &fakeSender{
		send: func(_ context.Context, to, _, body string) error {
			if _, dup := got[to]; dup {
				t.Errorf("second email to %s", to)
			}
			got[to] = body
			return nil
		},
	}

	if err := newDigest(t, repo, sender).RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("sent %d emails, want 2", len(got))
	}
	if body := got["a@example.com"]; !strings.Contains(body, "Olena") || !strings.Contains(body, "Petro") {
		t.Errorf("digest for a@example.com missing contacts: %q", body)
	}
	if body := got["b@example.com"]; !strings.Contains(body, "Iryna") {
		t.Errorf("digest for b@example.com missing contact: %q", body)
	}
}

func TestRunOnce_NoReminders_NoEmail(t *testing.T) {
	repo := &fakeContactRepo{
		upcoming: func(_ context.Context, _ int) ([]*domain.BirthdayReminder, error) {
			return nil, nil
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, to, _, _ string) error {
			t.Errorf("unexpected email to %s", to)
			return nil
		},
	}

	if err := newDigest(t, repo, sender).RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunOnce_SendFailure_ContinuesWithOthers(t *testing.T) {
	repo := &fakeContactRepo{
		upcoming: func(_ context.Context, _ int) ([]*domain.BirthdayReminder, error) {
			return []*domain.BirthdayReminder{
				{OwnerEmail: "a@example.com", ContactName: "Olena", Birthday: bday(time.June, 3)},
				{OwnerEmail: "b@example.com", ContactName: "Iryna", Birthday: bday(time.June, 4)},
			}, nil
		},
	}

	var delivered []string
	sender := &fakeSender{
		send: func(_ context.Context, to, _, _ string) error {
			if to == "a@example.com" {
				return errors.New("mailbox full")
			}
			delivered = append(delivered, to)
			return nil
		},
	}

	if err := newDigest(t, repo, sender).RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(delivered) != 1 || delivered[0] != "b@example.com" {
		t.Errorf("delivered = %v, want [b@example.com]", delivered)
	}
}

func TestNew_InvalidCron_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := digest.New(&fakeContactRepo{}, &fakeSender{}, logger, "not a cron", 7); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}
