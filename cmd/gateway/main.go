package main // Entry point package

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/rvra/ticketgate/internal/config"
    "github.com/rvra/ticketgate/internal/database"
    "github.com/rvra/ticketgate/internal/handler"
    "github.com/rvra/ticketgate/internal/identity"
    "github.com/rvra/ticketgate/internal/middleware"
    "github.com/rvra/ticketgate/internal/purchase"
    "github.com/rvra/ticketgate/internal/queue"
    "github.com/rvra/ticketgate/internal/remote"
    "github.com/rvra/ticketgate/internal/repository"
    "github.com/rvra/ticketgate/internal/router"
    queue_publisher "github.com/rvra/ticketgate/internal/service"
    "github.com/rvra/ticketgate/internal/session"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments set the environment directly
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("open delegation store: %v", err)
    }

    // The anonymous endpoint is the permanent fallback every session change
    // resets to; bound endpoints are derived from it.
    anon := remote.NewClient(cfg.BackendHost, cfg.PrimaryServiceID())

    delegated := identity.NewDelegatedProvider(cfg.IssuerURL, cfg.DelegationSecret, repository.NewDelegationRepo(db), anon)
    var wallet *identity.WalletProvider
    if cfg.WalletAgentURL != "" {
        wallet = identity.NewWalletProvider(cfg.WalletAgentURL, cfg.BackendHost, cfg.ServiceIDs, anon)
    }

    sessions := session.NewManager(anon)

    // Silent session restore before the API is considered ready: delegated
    // first, then wallet.  Failures degrade to anonymous.
    restoreCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
    if wallet != nil {
        sessions.Restore(restoreCtx, delegated, wallet)
    } else {
        sessions.Restore(restoreCtx, delegated)
    }
    cancel()

    events := repository.NewEventRepo(sessions, anon)
    tickets := repository.NewTicketRepo(sessions)

    var transfer purchase.TransferCapability
    if wallet != nil {
        transfer = wallet
    }
    coordinator := purchase.NewCoordinator(sessions, transfer, cfg.TreasuryAccount, queue_publisher.PublishTicketMinted)

    // Background consumer writing the mint audit log.  Runs its own
    // reconnect loop for the life of the process.
    go func() {
        if err := queue.StartMintedConsumer(); err != nil {
            log.Printf("minted-consumer stopped: %v", err)
        }
    }()

    // Redis-backed middlewares; both disable themselves when Redis is down.
    rdb := config.NewRedisClient()
    mw := router.Middlewares{
        CatalogCache: middleware.NewRedisCache(config.LoadCacheConfig(), rdb, func() string {
            return sessions.Current().Identity.Principal
        }),
        RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
    }

    e := echo.New()
    router.Register(e,
        handler.NewSessionHandler(sessions, delegated, wallet),
        handler.NewEventsHandler(events, sessions),
        handler.NewTicketsHandler(tickets),
        handler.NewPurchaseHandler(coordinator, events, tickets),
        mw,
    )

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s, backend=%s)", addr, cfg.Env, cfg.BackendHost)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
