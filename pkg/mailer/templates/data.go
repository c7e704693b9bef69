package templates

import (
	"encoding/json"
	"time"

	"github.com/oksasatya/blood-donor-registry/config"
)

// EmailData is the value every template renders against. Jobs carry it as a
// plain map.
type EmailData struct {
	Type           string `json:"Type"`
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`

	AppName     string `json:"AppName"`
	CompanyName string `json:"CompanyName"`
	SupportURL  string `json:"SupportURL"`

	IsDonor    bool   `json:"IsDonor"`
	BloodGroup string `json:"BloodGroup"`
	Searchable bool   `json:"Searchable"`

	Time    string            `json:"Time"`
	TimeAt  time.Time         `json:"TimeAt"`
	Changes map[string]string `json:"Changes"`
}

// ToMap flattens d into the map form used by EmailJob.Data.
func ToMap(d EmailData) map[string]any {
	m := map[string]any{}
	if b, err := json.Marshal(d); err == nil {
		_ = json.Unmarshal(b, &m)
	}
	return m
}

type Option func(*EmailData)

// WithTime stamps the event time, rendered in UTC.
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.TimeAt = t.UTC()
		d.Time = d.TimeAt.Format("02 January 2006, 15:04")
	}
}

// WithDonor marks the recipient as a donor with the given blood group.
func WithDonor(bloodGroup string, searchable bool) Option {
	return func(d *EmailData) {
		d.IsDonor, d.BloodGroup, d.Searchable = true, bloodGroup, searchable
	}
}

func newData(cfg *config.Config, typ, name, email string, opts []Option) EmailData {
	d := EmailData{
		Type:           typ,
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		AppName:        cfg.AppName,
		CompanyName:    cfg.CompanyName,
		SupportURL:     cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(newData(cfg, Welcome, name, email, opts))
}

func NewProfileUpdatedData(cfg *config.Config, name, email string, changes map[string]string, opts ...Option) map[string]any {
	d := newData(cfg, ProfileUpdated, name, email, opts)
	d.Changes = changes
	return ToMap(d)
}
