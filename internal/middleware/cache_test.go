package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/config"
)

func catalogContext(target string) echo.Context {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, target, nil)
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/events")
    return c
}

func testCacheConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:     true,
        Methods:     map[string]bool{"GET": true},
        KeyStrategy: "route_query",
        Prefix:      "events",
    }
}

func TestCacheKeySeparatesIdentities(t *testing.T) {
    cfg := testCacheConfig()
    c := catalogContext("/v1/events")

    anon := cacheKeyFrom(cfg, c, "")
    alice := cacheKeyFrom(cfg, c, "aaaaa-alice")
    bob := cacheKeyFrom(cfg, c, "bbbbb-bob")

    // The catalog response embeds per-identity affordance flags; an entry
    // rendered for one identity must never be a hit for another, including
    // after a session switch back to anonymous.
    if anon == alice || anon == bob || alice == bob {
        t.Fatalf("identities share a cache key: anon=%q alice=%q bob=%q", anon, alice, bob)
    }
}

func TestCacheKeyStableForSameIdentityAndRequest(t *testing.T) {
    cfg := testCacheConfig()

    k1 := cacheKeyFrom(cfg, catalogContext("/v1/events?category=Concert"), "aaaaa-alice")
    k2 := cacheKeyFrom(cfg, catalogContext("/v1/events?category=Concert"), "aaaaa-alice")
    if k1 != k2 {
        t.Fatalf("same identity and request must share a key: %q vs %q", k1, k2)
    }

    k3 := cacheKeyFrom(cfg, catalogContext("/v1/events?category=Theater"), "aaaaa-alice")
    if k1 == k3 {
        t.Fatal("route_query strategy must key on the query string")
    }
}
