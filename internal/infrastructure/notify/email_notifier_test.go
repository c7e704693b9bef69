package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/config"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/pkg/mailer"
	mailtpl "github.com/oksasatya/blood-donor-registry/pkg/mailer/templates"
)

type capturePublisher struct {
	jobs []mailer.EmailJob
	err  error
}

func (p *capturePublisher) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

var user = entity.User{ID: "u-1", Email: "ada@example.com", FirstName: "Ada", LastName: "Obi"}

func TestEmailNotifier_WelcomeDonor(t *testing.T) {
	pub := &capturePublisher{}
	n := NewEmailNotifier(pub, &config.Config{CompanyName: "Acme"})

	d := &entity.Donor{BloodGroup: "AB-", AvailableForDonation: true, ConsentToContact: true}
	require.NoError(t, n.Welcome(context.Background(), user, d))

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "ada@example.com", job.To)
	assert.Equal(t, mailtpl.Welcome, job.Template)
	assert.Equal(t, "Ada Obi", job.Data["Name"])
	assert.Equal(t, "AB-", job.Data["BloodGroup"])
	assert.Equal(t, true, job.Data["Searchable"])
	assert.Equal(t, "Acme", job.Data["CompanyName"])
	assert.NotEmpty(t, job.ID)
}

func TestEmailNotifier_ProfileUpdated(t *testing.T) {
	pub := &capturePublisher{}
	n := NewEmailNotifier(pub, &config.Config{})
	n.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 0, 0, time.UTC) }

	require.NoError(t, n.ProfileUpdated(context.Background(), user, map[string]string{"city": "Ibadan"}))

	job := pub.jobs[0]
	assert.Equal(t, mailtpl.ProfileUpdated, job.Template)
	assert.Equal(t, "03 February 2025, 04:05", job.Data["Time"])
	assert.Equal(t, time.Date(2025, 2, 3, 4, 5, 0, 0, time.UTC), job.QueuedAt)
	assert.Equal(t, map[string]any{"city": "Ibadan"}, job.Data["Changes"])
}

func TestEmailNotifier_PropagatesPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	n := NewEmailNotifier(&capturePublisher{err: boom}, &config.Config{})

	assert.ErrorIs(t, n.Welcome(context.Background(), user, nil), boom)
}
