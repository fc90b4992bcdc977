package communityapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NetworkError reports a failed call to the community API: the request could
// not be sent, timed out, returned a non-success status, or returned a body
// that is not the expected JSON.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the call failed because its deadline passed.
func (e *NetworkError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// NotFound reports whether the API answered 404.
func (e *NetworkError) NotFound() bool { return e.StatusCode == 404 }

// IsNetworkError reports whether err is (or wraps) a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// UserMessage renders err as the inline message shown to the operator.
func UserMessage(err error) string {
	var ne *NetworkError
	switch {
	case err == nil:
		return ""
	case !errors.As(err, &ne):
		return "Une erreur est survenue"
	case ne.Timeout():
		return "Le serveur ne répond pas (délai dépassé)"
	case ne.StatusCode != 0:
		return fmt.Sprintf("Erreur HTTP %d", ne.StatusCode)
	case ne.Err != nil && strings.HasPrefix(ne.Err.Error(), "decode response"):
		return "Réponse du serveur illisible"
	default:
		return "Impossible de joindre le serveur"
	}
}
