package storyboard

import (
	"fmt"
	"net/http"
)

// Renderer describes a video's storyboard: the strip of thumbnail tiles the
// player shows while scrubbing. The spec is a URL template whose expansion
// rules differ between live streams and on-demand videos, which is why
// consumers need the IsLiveStream flag.
type Renderer struct {
	Spec         string `json:"spec"`
	IsLiveStream bool   `json:"isLiveStream"`
	// RecommendedLevel is nil when the upstream response omits it.
	RecommendedLevel *int `json:"recommendedLevel,omitempty"`
}

// ResolutionKind distinguishes "we have a renderer" from "the video confirmed
// to have no storyboard" from "we couldn't find out".
type ResolutionKind int

const (
	// Unresolved means every client attempt failed, so it's unknown whether
	// the video has a storyboard. Callers must not confuse this with
	// ConfirmedEmpty.
	Unresolved ResolutionKind = iota
	// ConfirmedEmpty means an upstream answered and the video genuinely has
	// no storyboard. Usually very old or very low resolution videos.
	ConfirmedEmpty
	// Resolved means a concrete renderer was extracted.
	Resolved
)

func (k ResolutionKind) String() string {
	switch k {
	case ConfirmedEmpty:
		return "confirmedEmpty"
	case Resolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of a Resolve call.
type Resolution struct {
	Kind ResolutionKind
	// Renderer is only meaningful when Kind is Resolved.
	Renderer Renderer
	// Err carries the combined attempt failures when Kind is Unresolved.
	Err error
}

func unresolved(err error) Resolution {
	return Resolution{Kind: Unresolved, Err: err}
}

// FailureKind classifies a fetch failure for control flow purposes.
type FailureKind int

const (
	// FailureNetwork covers timeouts and general IO errors. Transient, but
	// never retried at this layer.
	FailureNetwork FailureKind = iota
	// FailureBadStatus is a non-200 response from the player endpoint.
	FailureBadStatus
	// FailureMalformed is a 200 response whose body isn't valid JSON.
	FailureMalformed
	// FailureInternal is an unexpected fault that was caught so it can't
	// crash the caller.
	FailureInternal
)

// FetchError is the classified failure of a single player response fetch.
type FetchError struct {
	Kind FailureKind
	// StatusCode is only set for FailureBadStatus.
	StatusCode int
	msg        string
	cause      error
}

func (e *FetchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

// Notifier receives the failure reports that should reach the end user, for
// example as a toast. Implementations must not block and must not panic.
type Notifier interface {
	Report(message string, cause error)
}

type nopNotifier struct{}

func (nopNotifier) Report(string, error) {}

// HTTPDoer executes raw HTTP requests. *http.Client satisfies this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
