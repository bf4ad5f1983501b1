package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a provider failure for the retry policy and for callers
// deciding what to tell the learner.
type Kind int

const (
	KindUnavailable Kind = iota + 1 // network failure or 5xx
	KindRateLimited                 // 429
	KindRejected                    // other 4xx: bad key, bad request
	KindInvalid                     // output did not match the schema
	KindTruncated                   // structured output cut at MaxTokens
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "provider unavailable"
	case KindRateLimited:
		return "rate limited"
	case KindRejected:
		return "request rejected"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "response truncated"
	}
	return "llm error"
}

// Error is the single error type returned by providers in this package.
type Error struct {
	Kind       Kind
	Provider   string
	Status     int           // HTTP status, 0 when the request never got one
	RetryAfter time.Duration // set for KindRateLimited when the server says
	Content    json.RawMessage
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Provider != "" {
		fmt.Fprintf(&b, " from %s", e.Provider)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, ", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// fromStatus classifies a failed HTTP exchange. A zero status means the
// request did not complete.
func fromStatus(provider string, status int, header http.Header, err error) *Error {
	e := &Error{Kind: KindUnavailable, Provider: provider, Status: status, Err: err}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.RetryAfter = retryAfter(header)
	case status == http.StatusRequestTimeout:
	case status >= 400 && status < 500:
		e.Kind = KindRejected
	}
	return e
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
