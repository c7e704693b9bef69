package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeES answers like an Elasticsearch 8 node and records requests.
func fakeES(t *testing.T, status map[string]int) (*elasticsearch.Client, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		code := http.StatusOK
		if c, ok := status[r.Method+" "+r.URL.Path]; ok {
			code = c
		}
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &reqs
}

func listing() entity.DonorListing {
	lat, lng := 6.52, 3.37
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return entity.DonorListing{
		Donor: entity.Donor{
			ID: "d-1", UserID: "u-1", BloodGroup: "O+", LastDonationDate: &date,
			AvailableForDonation: true, ConsentToContact: true, Latitude: &lat, Longitude: &lng,
		},
		Owner: entity.User{ID: "u-1", FirstName: "Ada", LastName: "Obi", City: "Lagos"},
	}
}

func TestDonorIndexer_IndexDonor(t *testing.T) {
	es, reqs := fakeES(t, nil)
	x := NewDonorIndexer(es, "donors")

	require.NoError(t, x.IndexDonor(context.Background(), listing()))
	require.Len(t, *reqs, 1)
	r := (*reqs)[0]
	assert.Equal(t, http.MethodPut, r.Method)
	assert.Equal(t, "/donors/_doc/d-1", r.Path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.Body), &doc))
	assert.Equal(t, "Ada Obi", doc["name"])
	assert.Equal(t, "2024-01-15", doc["last_donation_date"])
	assert.Equal(t, true, doc["searchable"])
	assert.Equal(t, map[string]any{"lat": 6.52, "lon": 3.37}, doc["location"])
}

func TestDonorIndexer_ErrorStatus(t *testing.T) {
	es, _ := fakeES(t, map[string]int{"PUT /donors/_doc/d-1": http.StatusBadRequest})
	x := NewDonorIndexer(es, "donors")

	err := x.IndexDonor(context.Background(), listing())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "400"), err.Error())
}

func TestDonorIndexer_EnsureIndexCreatesWhenMissing(t *testing.T) {
	es, reqs := fakeES(t, map[string]int{"HEAD /donors": http.StatusNotFound})
	x := NewDonorIndexer(es, "donors")

	require.NoError(t, x.EnsureIndex(context.Background()))
	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodPut, (*reqs)[1].Method)
	assert.Contains(t, (*reqs)[1].Body, `"geo_point"`)
}

func TestDonorIndexer_EnsureIndexSkipsExisting(t *testing.T) {
	es, reqs := fakeES(t, nil)
	x := NewDonorIndexer(es, "donors")

	require.NoError(t, x.EnsureIndex(context.Background()))
	assert.Len(t, *reqs, 1)
}
