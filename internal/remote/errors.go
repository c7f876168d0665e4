package remote

import (
    "errors"
    "fmt"
    "strings"
)

// Sentinel errors for the known rejection classes of the remote backend.
// Handlers translate these into distinct user-facing messages.
var (
    // ErrIdentityRequired is returned when a state-changing call was issued
    // through the anonymous endpoint.
    ErrIdentityRequired = errors.New("identity required")
    // ErrNotCreator is returned when the caller tried to edit or delete a
    // listing recorded under someone else's principal.
    ErrNotCreator = errors.New("only the creator may modify this event")
    // ErrInvalidPassword is returned when the create-event password was
    // rejected remotely.
    ErrInvalidPassword = errors.New("invalid password")
    // ErrNotFound is returned when the referenced event or ticket does not
    // exist remotely.
    ErrNotFound = errors.New("not found")
)

// RemoteError carries an unclassified backend rejection.
type RemoteError struct {
    Code    string // structured code, may be empty on older backends
    Message string
}

func (e *RemoteError) Error() string {
    if e.Code != "" {
        return fmt.Sprintf("remote rejected (%s): %s", e.Code, e.Message)
    }
    return "remote rejected: " + e.Message
}

// Classify maps a backend rejection to one of the sentinel errors above.
// When the backend supplies a structured code it is authoritative.  Without
// one we fall back to substring matching on the message text, which is a
// best-effort compatibility shim against the deployed backend's known error
// strings and may silently miss if those strings ever change.
func Classify(code, message string) error {
    switch code {
    case "anonymous_caller":
        return fmt.Errorf("%w: %s", ErrIdentityRequired, message)
    case "not_creator":
        return fmt.Errorf("%w: %s", ErrNotCreator, message)
    case "invalid_password":
        return ErrInvalidPassword
    case "not_found":
        return fmt.Errorf("%w: %s", ErrNotFound, message)
    }
    s := strings.ToLower(message)
    switch {
    case strings.Contains(s, "anonymous"), strings.Contains(s, "sign in"):
        return fmt.Errorf("%w: %s", ErrIdentityRequired, message)
    case strings.Contains(s, "only the creator"):
        return fmt.Errorf("%w: %s", ErrNotCreator, message)
    case strings.Contains(s, "invalid password"):
        return ErrInvalidPassword
    case strings.Contains(s, "not found"):
        return fmt.Errorf("%w: %s", ErrNotFound, message)
    }
    return &RemoteError{Code: code, Message: message}
}
