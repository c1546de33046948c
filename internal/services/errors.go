package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for stage failures. Stage executors tag every error with
// one of these so the status API can expose a machine-readable kind without
// parsing message text.
var (
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrProviderAuth        = errors.New("provider auth error")
	ErrProviderQuota       = errors.New("provider quota error")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrInsufficientFootage = errors.New("insufficient footage")
	ErrTranscodeFailed     = errors.New("transcode failed")
	ErrInternalTimeout     = errors.New("internal timeout")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTranscodeFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to the stable identifier surfaced by the status API.
// Context deadline errors that escaped tagging are folded into the timeout
// kind so callers never see raw context errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrProviderAuth):
		return "provider_auth"
	case errors.Is(err, ErrProviderQuota):
		return "provider_quota"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, ErrInsufficientFootage):
		return "insufficient_footage"
	case errors.Is(err, ErrTranscodeFailed):
		return "transcode_failed"
	case errors.Is(err, ErrInternalTimeout), errors.Is(err, context.DeadlineExceeded):
		return "internal_timeout"
	default:
		return "internal"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
