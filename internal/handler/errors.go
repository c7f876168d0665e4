package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/purchase"
    "github.com/rvra/ticketgate/internal/remote"
    "github.com/rvra/ticketgate/internal/repository"
    "github.com/rvra/ticketgate/internal/session"
    "github.com/rvra/ticketgate/internal/utils"
)

// writeError is the single operation boundary where core errors become
// non-blocking JSON notices.  Every sentinel maps to a distinct status and
// user-facing message; anything unrecognized gets a generic failure.  No
// error escapes a handler unconverted, so the client UI always stays
// interactive.
func writeError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, purchase.ErrIdentityRequired),
        errors.Is(err, remote.ErrIdentityRequired):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Please sign in or connect a wallet first."})
    case errors.Is(err, utils.ErrBadDelegation):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Sign-in failed: delegation rejected."})
    case errors.Is(err, remote.ErrInvalidPassword):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid password"})
    case errors.Is(err, remote.ErrNotCreator):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "Denied: only the creator"})
    case errors.Is(err, remote.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
    case errors.Is(err, repository.ErrReadUnavailable):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Cannot load events."})
    case errors.Is(err, purchase.ErrTransferUnavailable):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Ledger transfer is not available."})
    case errors.Is(err, purchase.ErrTransferFailed):
        return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "Payment cancelled or failed"})
    case errors.Is(err, purchase.ErrAttemptInFlight):
        return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Purchase already in progress."})
    case errors.Is(err, session.ErrAlreadyBound):
        return c.JSON(http.StatusConflict, echo.Map{"error": "Already connected with this provider."})
    }
    var rerr *remote.RemoteError
    if errors.As(err, &rerr) {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "Failed to submit."})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong."})
}
