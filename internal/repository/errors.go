// Package repository implements the read/write operations the handlers call,
// layered on whatever remote endpoint is currently bound.  This file defines
// the sentinel errors shared across repositories so higher layers can
// distinguish failure scenarios without inspecting message text.
package repository

import "errors"

// ErrReadUnavailable is returned when both the identity-bound read and the
// anonymous fallback read failed.  Terminal for that screen until the next
// manual refresh; handlers translate it into a 503.
var ErrReadUnavailable = errors.New("read unavailable")
