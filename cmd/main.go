// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/database"
	"github.com/hatch-ir/hatch/internal/handler"
	"github.com/hatch-ir/hatch/internal/mailer"
	"github.com/hatch-ir/hatch/internal/repository"
	"github.com/hatch-ir/hatch/internal/service"
	"github.com/hatch-ir/hatch/internal/wizard"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	ctx := context.Background()

	// ── 1. Connect to PostgreSQL and run migrations ───────────────────────
	pool, err := database.Connect(ctx)
	if err != nil {
		slog.Error("database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Info("connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	otpRepo := repository.NewOTPRepository(pool)

	tokens := auth.NewTokens([]byte(getEnv("JWT_SECRET", "dev-only-secret")))

	var codeMailer mailer.Mailer = mailer.LogMailer{}
	if key := os.Getenv("MAILERSEND_API_KEY"); key != "" {
		codeMailer = mailer.NewMailerSend(key,
			getEnv("MAIL_FROM_NAME", "هچ"),
			getEnv("MAIL_FROM_EMAIL", "noreply@hatch.events"))
	} else {
		slog.Warn("MAILERSEND_API_KEY not set, verification codes will be logged")
	}

	authSvc := service.NewAuthService(profileRepo, otpRepo, codeMailer, tokens)
	eventSvc := service.NewEventService(eventRepo)
	regSvc := service.NewRegistrationService(eventRepo, regRepo, profileRepo)

	authn := handler.NewAuthenticator(tokens)
	authHandler := handler.NewAuthHandler(authSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	regHandler := handler.NewRegistrationHandler(regSvc)
	wizardHandler := handler.NewWizardHandler(eventSvc, authSvc, regSvc, wizard.NewSessions())

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger)
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/otp/request", authHandler.RequestCode)
		r.Post("/otp/verify", authHandler.VerifyCode)
		r.With(authn.Require).Get("/me", authHandler.Me)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.With(authn.Require).Post("/", eventHandler.CreateEvent)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", eventHandler.GetEvent) // accepts a UUID or a slug
			r.With(authn.Require).Put("/", eventHandler.UpdateEvent)
			r.With(authn.Require).Delete("/", eventHandler.DeleteEvent)

			r.With(authn.Optional).Post("/wizard", wizardHandler.Open)
			r.With(authn.Require).Get("/ticket", regHandler.Ticket)

			r.Route("/registrations", func(r chi.Router) {
				r.Use(authn.Require)
				r.Get("/", regHandler.Attendees)
				r.Get("/me", regHandler.GetOwn)
				r.Delete("/me", regHandler.CancelOwn)
				r.Patch("/{rid}", regHandler.Moderate)
				r.Delete("/{rid}", regHandler.Remove)
			})
		})
	})

	r.Route("/wizard/{sid}", func(r chi.Router) {
		r.Use(authn.Optional)
		r.Post("/ticket", wizardHandler.SelectTicket)
		r.Post("/back", wizardHandler.Back)
		r.Post("/info", wizardHandler.SubmitInfo)
		r.Post("/verify", wizardHandler.VerifyCode)
		r.Delete("/", wizardHandler.Close)
	})

	r.Route("/me", func(r chi.Router) {
		r.Use(authn.Require)
		r.Get("/events", eventHandler.ListMyEvents)
		r.Get("/registrations", regHandler.ListMine)
		r.Get("/profile", authHandler.Me)
		r.Put("/profile", authHandler.UpdateProfile)
	})

	// Static HTML – serve the web/ directory at the root.
	webFS := http.Dir("./web")
	r.Handle("/*", http.FileServer(webFS))

	// ── 4. Start server with graceful shutdown ────────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
