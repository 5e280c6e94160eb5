package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/queuepro/internal/catalog"
	"github.com/iliyamo/queuepro/internal/config"
	"github.com/iliyamo/queuepro/internal/handler"
	"github.com/iliyamo/queuepro/internal/mail"
	"github.com/iliyamo/queuepro/internal/middleware"
	"github.com/iliyamo/queuepro/internal/queue"
	"github.com/iliyamo/queuepro/internal/realtime"
	"github.com/iliyamo/queuepro/internal/router"
	"github.com/iliyamo/queuepro/internal/service"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

func main() {
	cfg := config.Load() // Load environment config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStores()

	rdb := config.NewRedisClient() // nil disables cache and rate limit
	if rdb != nil {
		defer rdb.Close()
	}

	hub := realtime.New()
	var notifier ticketing.Notifier = hub
	if cfg.NATSURL != "" {
		bridge, err := realtime.NewNATSBridge(cfg.NATSURL, hub)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer bridge.Close()
		notifier = bridge // events reach the hub through the relay
	}

	g, gctx := errgroup.WithContext(ctx)

	delivery := receiptDelivery(cfg)
	receipts := delivery
	if cfg.RabbitURL != "" {
		receipts = service.NewReceiptPublisher(cfg.RabbitURL)
		g.Go(func() error { return queue.StartReceiptConsumer(gctx, cfg.RabbitURL, delivery) })
	}

	cat := catalog.Default()
	svc := ticketing.NewService(st.tokens, cat, notifier, receipts, ticketing.Options{
		PerToken:    cfg.PerToken(),
		MaxAttempts: cfg.IssueAttempts,
		Now:         cfg.Now,
	})

	bootstrapAdmin(ctx, cfg, st.users)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, st.users, st.sessions), cfg.JWTSecret)
	router.RegisterPublic(e,
		&handler.CatalogHandler{Catalog: cat},
		realtime.Handler(hub),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	appointments := handler.NewAppointmentHandler(st.appointments, receipts, cfg.Now)
	router.RegisterCustomer(e,
		handler.NewTokenHandler(svc),
		appointments,
		cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)
	router.RegisterAdmin(e, handler.NewAdminHandler(svc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	g.Go(func() error {
		log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: %v", err)
	}
	svc.Wait() // let in-flight receipts finish
	appointments.Wait()
	log.Printf("server stopped")
}

// receiptDelivery picks the sender that finally delivers receipts: SMTP
// when configured, otherwise the log.
func receiptDelivery(cfg config.Config) ticketing.ReceiptSender {
	if cfg.SMTP.Host == "" {
		log.Printf("mail: SMTP_HOST not set, receipts are logged")
		return mail.LogSender{}
	}
	return mail.NewMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
}
