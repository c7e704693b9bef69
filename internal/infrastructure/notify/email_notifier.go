package notify

import (
	"context"
	"time"

	"github.com/oksasatya/blood-donor-registry/config"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/pkg/mailer"
	mailtpl "github.com/oksasatya/blood-donor-registry/pkg/mailer/templates"
)

// Publisher puts one JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailNotifier turns account events into templated email jobs for the
// email worker.
type EmailNotifier struct {
	pub Publisher
	cfg *config.Config
	now func() time.Time
}

func NewEmailNotifier(pub Publisher, cfg *config.Config) *EmailNotifier {
	return &EmailNotifier{pub: pub, cfg: cfg, now: time.Now}
}

func (n *EmailNotifier) Welcome(ctx context.Context, u entity.User, d *entity.Donor) error {
	var opts []mailtpl.Option
	if d != nil {
		opts = append(opts, mailtpl.WithDonor(d.BloodGroup, d.Searchable()))
	}
	data := mailtpl.NewWelcomeData(n.cfg, u.DisplayName(), u.Email, opts...)
	return n.pub.PublishJSON(ctx, mailer.NewTemplateJob(u.Email, mailtpl.Welcome, data, n.now()))
}

func (n *EmailNotifier) ProfileUpdated(ctx context.Context, u entity.User, changes map[string]string) error {
	now := n.now()
	data := mailtpl.NewProfileUpdatedData(n.cfg, u.DisplayName(), u.Email, changes, mailtpl.WithTime(now))
	return n.pub.PublishJSON(ctx, mailer.NewTemplateJob(u.Email, mailtpl.ProfileUpdated, data, now))
}
