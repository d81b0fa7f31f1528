package provider

import (
	"context"
)

// Provider is a constructed provider client. What it can do is expressed by
// the optional interfaces below; the Dispatcher checks them with type
// assertions.
//
// Contract:
//   - Context: solver methods should honor cancellation and deadlines. The
//     Dispatcher bounds every call by its timeout regardless.
//   - Errors: a returned error means "no solution", never a crash of the run.
type Provider interface {
	Kind() Kind
}

// RecaptchaSolver solves reCaptcha challenges.
type RecaptchaSolver interface {
	SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error)
}

// ImageSolver solves image captchas.
type ImageSolver interface {
	SolveImage(ctx context.Context, image Image) (string, error)
}

// BalanceChecker reports the remaining account balance for the pre-flight
// check.
type BalanceChecker interface {
	Balance(ctx context.Context) (float64, error)
}

// Image is the payload of an image captcha: either a URL or base64 data.
type Image struct {
	URL    string
	Base64 string
}

// Params carries the capability-specific inputs of one Solve call.
type Params struct {
	Capability Capability

	// reCaptcha
	SiteKey string
	PageURL string

	// image
	Image Image
}

// Reason explains a Result.
type Reason string

const (
	ReasonSolved    Reason = "solved"
	ReasonEmpty     Reason = "empty"
	ReasonTimeout   Reason = "timeout"
	ReasonFailed    Reason = "failed"
	ReasonCancelled Reason = "cancelled"
)

// Result is the outcome of a Solve call. An empty Token means no solution;
// Reason tells the caller why, and Err keeps the provider error (if any) for
// logging.
type Result struct {
	Token  string
	Reason Reason
	Err    error
}

// Solved reports whether the provider produced a solution.
func (r Result) Solved() bool {
	return r.Token != ""
}
