package logger

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"
)

const requestIDHeader = "X-Request-ID"

type tracingTransport struct {
	next http.RoundTripper
}

// NewTransport wraps next with request tracing: every request gets an
// `X-Request-ID` header and is logged with its status and work time.
func NewTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &tracingTransport{next: next}
}

func (t *tracingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = randBytesHex(16)
		r = r.Clone(r.Context())
		r.Header.Set(requestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(r)

	log := Log(r.Context()).With("trace-id", requestID)
	if err != nil {
		log.Debugw("request failed",
			"method", r.Method,
			"url", r.URL.String(),
			"work_time", time.Since(start),
			"error", err,
		)
		return resp, err
	}

	log.Debugw(r.URL.Path,
		"method", r.Method,
		"url", r.URL.String(),
		"status", resp.StatusCode,
		"work_time", time.Since(start),
	)
	return resp, nil
}

func randBytesHex(n int) string {
	randBytes := make([]byte, n)
	_, _ = rand.Read(randBytes)
	return fmt.Sprintf("%x", randBytes)
}
