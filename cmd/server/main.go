package main // Entry point package

import (
    "context"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/config"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/database"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/flow"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/handler"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/mail"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/middleware"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/queue"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/router"
    queuepublisher "github.com/Holasoyelrey101/amanwal-sub000/internal/service"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/sweep"
)

func main() {
    // .env is optional; real deployments inject variables directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional: without it the cache and limiter pass through.
    rdb := config.NewRedisClient()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    cabins := repository.NewCabinRepo(db)
    bookings := repository.NewBookingRepo(db)
    reviews := repository.NewReviewRepo(db)
    tickets := repository.NewTicketRepo(db)

    gateway := flow.New(cfg.FlowAPIKey, cfg.FlowSecretKey, cfg.FlowBaseURL)
    mailer := mail.NewFromEnv()
    notify := queuepublisher.PublishNotification

    window := time.Duration(cfg.PaymentWindowMin) * time.Minute
    authH := handler.NewAuthHandler(cfg, users, tokens)
    cabinH := handler.NewCabinHandler(cabins)
    reviewH := handler.NewReviewHandler(reviews, cabins)
    bookingH := handler.NewBookingHandler(bookings, cabins, users, notify, window)
    paymentH := handler.NewPaymentHandler(cfg, gateway, bookings, cabins, users, notify)
    ticketH := handler.NewTicketHandler(tickets, users, notify)
    adminH := handler.NewAdminHandler(users, bookings, tickets)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterPublic(e, cabinH, bookingH, reviewH, cache)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterBookings(e, bookingH, cabinH, reviewH, cfg.JWTSecret)
    router.RegisterPayments(e, paymentH, cfg.JWTSecret)
    router.RegisterTickets(e, ticketH, cfg.JWTSecret)
    router.RegisterAdmin(e, adminH, cfg.JWTSecret)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    // Expiration sweep: cancels pending bookings past their payment
    // window.  Runs until the shutdown signal cancels ctx.
    sweeper := sweep.New(bookings, time.Duration(cfg.SweepIntervalSec)*time.Second)
    go sweeper.Run(ctx)

    // Notification consumer: drains the queue into the mailer.  Absence
    // of a broker is logged inside and retried with backoff.
    go func() {
        if err := queue.StartNotifyConsumer(mailer); err != nil {
            log.Printf("notify consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    go func() {
        if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    <-ctx.Done()
    log.Println("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Printf("shutdown: %v", err)
    }
}
