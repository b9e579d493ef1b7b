package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"globapp-api/internal/auth"
	"globapp-api/internal/config"
	"globapp-api/internal/dispatch"
	"globapp-api/internal/drivers"
	"globapp-api/internal/geo"
	"globapp-api/internal/matching"
	"globapp-api/internal/notifications"
	"globapp-api/internal/payments"
	"globapp-api/internal/pricing"
	"globapp-api/internal/rides"
	"globapp-api/internal/tracking"
	"globapp-api/migrations"
	"globapp-api/pkg/apikey"
	"globapp-api/pkg/db"
	"globapp-api/pkg/jwt"
	"globapp-api/pkg/kafka"
	rredis "globapp-api/pkg/redis"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 1. Configuration ──
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	issuer, err := jwt.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatal(err)
	}

	// ── 2. PostgreSQL ──
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := database.RunMigrations(ctx, migrations.FS); err != nil {
		log.Fatal("migrations failed:", err)
	}

	// ── 3. Redis ──
	redisClient, err := rredis.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	// ── 4. Kafka ──
	kafkaClient := kafka.NewClient(cfg.Brokers)
	if err := kafkaClient.EnsureTopics(ctx,
		kafka.TopicRideRequested,
		kafka.TopicRideAssigned,
		kafka.TopicRideStatusChanged,
	); err != nil {
		log.Fatal(err)
	}

	// ── 5. Services ──
	notifier := notifications.NewNotifier(notifications.NewPGSink(database.Pool))
	engine := pricing.NewEngine(cfg)
	resolver := geo.NewResolver()
	wsHub := tracking.NewHub()

	driverSvc := drivers.NewService(drivers.NewPGStore(database.Pool), redisClient, cfg)
	authStore := auth.NewPGStore(database.Pool)
	authSvc := auth.NewService(authStore, authStore, issuer, cfg)
	rideStore := rides.NewPGStore(database.Pool)
	rideSvc := rides.NewService(rideStore, driverSvc, engine, resolver, kafkaClient, notifier, wsHub)
	driverSvc.AttachTracking(wsHub, rideSvc)
	dispatchSvc := dispatch.NewService(dispatch.NewPGStore(database.Pool), driverSvc, rideStore,
		redisClient, kafkaClient, notifier, wsHub)
	paymentSvc := payments.NewService(rideStore, payments.NewPGRecorder(database.Pool), cfg)

	// ── 6. Background consumers ──
	matcher := matching.NewMatcher(kafkaClient, redisClient, resolver, dispatchSvc)
	matcher.Start(ctx)

	// ── 7. HTTP router ──
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"globapp-api"}`))
	})

	driverHandler := drivers.NewHandler(driverSvc)
	authHandler := auth.NewHandler(authSvc)
	rideHandler := rides.NewHandler(rideSvc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/info", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"service":"globapp-api","version":"1.0"}`))
		})
		r.Get("/time", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"utc":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
		})

		// Rider-facing surface, guarded by the public API key.
		r.Group(func(r chi.Router) {
			r.Use(apikey.RequirePublic(cfg.PublicAPIKey))
			r.Mount("/rides", rideHandler.PublicRoutes())
			r.Post("/fare/estimate", rideHandler.Quote)
			r.Mount("/payment", payments.NewHandler(paymentSvc).Routes())
		})

		// Driver app surface: PIN login, then bearer tokens.
		r.Route("/driver", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(issuer.RequireDriver)
				r.Put("/location", driverHandler.UpsertLocation)
				r.Get("/assigned-ride", rideHandler.AssignedRide)
				r.Get("/rides", rideHandler.ListMine)
				r.Post("/rides/{id}/status", rideHandler.UpdateStatus)
			})
		})

		// Ops console surface, guarded by the admin API key.
		r.Group(func(r chi.Router) {
			r.Use(apikey.RequireAdmin(cfg.AdminAPIKey))
			r.Mount("/drivers", driverHandler.AdminRoutes())
			r.Mount("/dispatch", dispatch.NewHandler(dispatchSvc).Routes())
		})
	})

	r.Mount("/ws", wsHub.Routes())

	// ── 8. Start server ──
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Printf("globapp-api listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// ── 9. Graceful shutdown ──
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	srv.Shutdown(shutCtx)
	cancel() // stop consumers
}
