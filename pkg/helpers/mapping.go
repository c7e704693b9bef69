package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/blood-donor-registry/pkg/mailer"
	mailtpl "github.com/oksasatya/blood-donor-registry/pkg/mailer/templates"
)

// SubjectFor returns the fallback subject for a templated job whose template
// did not render one.
func SubjectFor(job *mailer.EmailJob) string {
	switch strings.ToLower(job.Template) {
	case mailtpl.Welcome:
		return "Welcome to the blood donor registry"
	case mailtpl.ProfileUpdated:
		return "Your profile was updated successfully"
	default:
		return "Notification"
	}
}

// EnsureRecipient fills the recipient fields templates rely on from job.To.
func EnsureRecipient(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	for _, k := range []string{"Email", "RecipientEmail"} {
		if v, ok := job.Data[k]; !ok || fmt.Sprintf("%v", v) == "" {
			job.Data[k] = job.To
		}
	}
}
