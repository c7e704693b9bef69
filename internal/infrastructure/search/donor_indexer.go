package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
)

// DonorIndexer mirrors donor listings into an Elasticsearch index keyed by
// donor id. The index is a read-side copy; the relational store stays the
// source of truth for search results.
type DonorIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewDonorIndexer(es *elasticsearch.Client, index string) *DonorIndexer {
	return &DonorIndexer{es: es, index: index}
}

type donorDocument struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	Name                 string    `json:"name"`
	BloodGroup           string    `json:"blood_group"`
	City                 string    `json:"city"`
	LastDonationDate     *string   `json:"last_donation_date,omitempty"`
	AvailableForDonation bool      `json:"available_for_donation"`
	ConsentToContact     bool      `json:"consent_to_contact"`
	Searchable           bool      `json:"searchable"`
	Location             *geoPoint `json:"location,omitempty"`
	UpdatedAt            string    `json:"updated_at"`
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func newDonorDocument(l entity.DonorListing) donorDocument {
	doc := donorDocument{
		ID:                   l.Donor.ID,
		UserID:               l.Donor.UserID,
		Name:                 l.Owner.DisplayName(),
		BloodGroup:           l.Donor.BloodGroup,
		City:                 l.Owner.City,
		LastDonationDate:     l.Donor.LastDonated(),
		AvailableForDonation: l.Donor.AvailableForDonation,
		ConsentToContact:     l.Donor.ConsentToContact,
		Searchable:           l.Donor.Searchable(),
		UpdatedAt:            l.Donor.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if c := l.Donor.Coordinates(); c != nil {
		doc.Location = &geoPoint{Lat: c[0], Lon: c[1]}
	}
	return doc
}

// IndexDonor upserts the listing document.
func (x *DonorIndexer) IndexDonor(ctx context.Context, l entity.DonorListing) error {
	b, err := json.Marshal(newDonorDocument(l))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: l.Donor.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index donor %s: %w", l.Donor.ID, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index donor %s: %s", l.Donor.ID, res.Status())
	}
	return nil
}

// donorMapping types the fields the mirror is queried on.
const donorMapping = `{
  "mappings": {
    "properties": {
      "blood_group": {"type": "keyword"},
      "city": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "name": {"type": "text"},
      "last_donation_date": {"type": "date", "format": "yyyy-MM-dd"},
      "available_for_donation": {"type": "boolean"},
      "consent_to_contact": {"type": "boolean"},
      "searchable": {"type": "boolean"},
      "location": {"type": "geo_point"},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist.
func (x *DonorIndexer) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index exists: %w", err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: x.index, Body: bytes.NewReader([]byte(donorMapping))}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es create index %s: %s", x.index, res.Status())
	}
	return nil
}
