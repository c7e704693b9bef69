package helpers

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures NewESClient. Timeout bounds both dialing and the
// wait for response headers.
type ESOptions struct {
	Addrs      []string
	Username   string
	Password   string
	MaxRetries int
	Timeout    time.Duration
}

// NewESClient builds an Elasticsearch client for the donor index mirror.
func NewESClient(o ESOptions) (*elasticsearch.Client, error) {
	if len(o.Addrs) == 0 {
		return nil, errors.New("elasticsearch: no addresses")
	}
	timeout := orDefault(o.Timeout, 3*time.Second)
	retries := o.MaxRetries
	if retries <= 0 {
		retries = 2
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  o.Addrs,
		Username:   o.Username,
		Password:   o.Password,
		MaxRetries: retries,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	})
}
