package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers the /healthz probe.  It reports only that the process is
// up and serving; backend, wallet agent and broker reachability are not
// checked here, since the gateway degrades per subsystem rather than as a
// whole.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
