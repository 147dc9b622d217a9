package sase

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/netops-tools/sasectl/pkg/util"
)

// HeaderRequestID carries a per-request UUID so API-side logs can be matched
// with ours.
const HeaderRequestID = "X-Request-ID"

// loggingTransport sets User-Agent and X-Request-ID and logs each exchange.
type loggingTransport struct {
	base      http.RoundTripper
	userAgent string
}

func newLoggingTransport(base http.RoundTripper, userAgent string) *loggingTransport {
	if base == nil {
		base = newBaseTransport()
	}
	return &loggingTransport{base: base, userAgent: userAgent}
}

// newBaseTransport is TLS 1.2+ with dial and handshake timeouts.
func newBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	resp, err := t.base.RoundTrip(req)

	entry := util.Logger.WithFields(logrus.Fields{
		"method":      req.Method,
		"url":         req.URL.String(),
		"request_id":  req.Header.Get(HeaderRequestID),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("http request failed")
		return nil, err
	}
	entry = entry.WithField("status", resp.StatusCode)
	if resp.StatusCode >= 400 {
		entry.Warn("http request")
	} else {
		entry.Debug("http request")
	}
	return resp, nil
}
