package ai

import (
	"errors"
	"fmt"
	"time"
)

// AuthError indicates authentication/authorization failures (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError indicates 429 responses and may include a Retry-After.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

// ModelNotFoundError indicates the requested model is not available.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.APIError.Error())
}

// BadRequestError indicates a 400 validation problem.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// QuotaExceededError indicates billing/quota problems.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s", e.APIError.Error())
}

// ServerError indicates 5xx errors from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("provider error: %s", e.APIError.Error()) }

// UnreachableError indicates the runtime could not be reached (e.g. local Ollama down).
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Hint returns a one-line suggestion for a runtime error, or "".
func Hint(err error) string {
	var (
		auth   *AuthError
		rate   *RateLimitError
		model  *ModelNotFoundError
		quota  *QuotaExceededError
		server *ServerError
		unr    *UnreachableError
	)
	switch {
	case errors.As(err, &auth):
		return "check OPENROUTER_API_KEY or run 'tabsight config set api_key <key>'"
	case errors.As(err, &rate):
		if rate.RetryAfter > 0 {
			return fmt.Sprintf("rate limited; retry in about %ds or raise --retry-max", int(rate.RetryAfter.Seconds()))
		}
		return "rate limited; retry later or raise --retry-max"
	case errors.As(err, &model):
		return "pick another --model (or 'ollama pull <model>' for local runtimes)"
	case errors.As(err, &quota):
		return "provider quota exhausted; check billing or switch to --provider ollama"
	case errors.As(err, &server):
		return "provider error; try again shortly"
	case errors.As(err, &unr):
		return "start the runtime (e.g. 'ollama serve') or fix --ollama-host"
	}
	return ""
}
