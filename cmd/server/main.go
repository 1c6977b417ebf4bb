package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	api "github.com/examprep/examprep-server/internal/api/http"
	"github.com/examprep/examprep-server/internal/auth"
	"github.com/examprep/examprep-server/internal/category"
	"github.com/examprep/examprep-server/internal/config"
	"github.com/examprep/examprep-server/internal/db"
	"github.com/examprep/examprep-server/internal/importer"
	"github.com/examprep/examprep-server/internal/progress"
	"github.com/examprep/examprep-server/internal/question"
	"github.com/examprep/examprep-server/internal/rbac"
	"github.com/examprep/examprep-server/internal/record"
	"github.com/examprep/examprep-server/internal/user"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examprep-server",
		Short: "Exam-preparation backend: questions, drills and progress tracking",
	}

	serve := serveCmd()
	root.AddCommand(serve)

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db-driver", "sqlite", "Database driver (sqlite, postgres)")
	f.String("db-dsn", "", "Database DSN (driver default when empty)")
	f.String("jwt-secret", "change-me-in-production", "HMAC secret for bearer tokens")
	f.Duration("token-ttl", 7*24*time.Hour, "Bearer token lifetime")
	f.String("upload-dir", "./uploads", "Directory for spooled question-bank uploads")
	f.Int64("max-upload-bytes", 5*1024*1024, "Maximum import file size")
	f.String("cors-origins", "http://localhost:3000", "Comma-separated allowed CORS origins")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("EXAMPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	cfg := config.FromViper(v)

	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Error("db open failed", "err", err)
		return err
	}
	defer dbh.Close()

	driver := db.Driver(cfg.DBDriver)
	questions := question.NewSQLStore(dbh, driver)
	categories := category.NewSQLStore(dbh, driver)
	records := record.NewSQLStore(dbh, driver)
	progressStore := progress.NewSQLStore(dbh, driver)
	users := user.NewSQLStore(dbh, driver)

	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	imp := importer.New(questions, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Post("/auth/register", auth.RegisterHandler(authSvc, users))
		ar.Post("/auth/login", auth.LoginHandler(authSvc, users))
		ar.Post("/auth/guest", auth.GuestHandler(authSvc, users))

		// Public browse surface
		ar.Get("/questions", api.ListQuestionsHandler(questions))
		ar.Get("/questions/random", api.RandomQuestionsHandler(questions))
		ar.Get("/questions/{id}", api.GetQuestionHandler(questions))
		ar.Get("/categories", api.ListCategoriesHandler(categories))
		ar.Get("/categories/{id}", api.GetCategoryHandler(categories))
		ar.Get("/categories/{id}/children", api.CategoryChildrenHandler(categories))

		// Protected API (JWT -> user+role in context -> RBAC)
		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(authSvc, users))

			pr.Get("/users/me", api.MeHandler())
			pr.Put("/users/me", api.UpdateMeHandler(users))
			pr.With(rbac.Require("users:list")).Get("/users", api.ListUsersHandler(users))

			pr.With(rbac.Require("questions:manage")).Post("/questions", api.CreateQuestionHandler(questions))
			pr.With(rbac.Require("questions:manage")).Put("/questions/{id}", api.UpdateQuestionHandler(questions))
			pr.With(rbac.Require("questions:manage")).Delete("/questions/{id}", api.DeleteQuestionHandler(questions))
			pr.With(rbac.RequireAny("questions:import", "questions:manage")).
				Post("/questions/import", api.ImportQuestionsHandler(imp, cfg.UploadDir, cfg.MaxUploadBytes, log))

			pr.With(rbac.Require("categories:manage")).Post("/categories", api.CreateCategoryHandler(categories))
			pr.With(rbac.Require("categories:manage")).Put("/categories/{id}", api.UpdateCategoryHandler(categories))
			pr.With(rbac.Require("categories:manage")).Delete("/categories/{id}", api.DeleteCategoryHandler(categories))

			pr.Get("/records", api.ListRecordsHandler(records))
			pr.Get("/records/stats", api.RecordStatsHandler(records))
			pr.Post("/records", api.CreateRecordHandler(records))
			pr.Put("/records/{id}", api.UpdateRecordHandler(records))
			pr.Delete("/records/{id}", api.DeleteRecordHandler(records))

			pr.Get("/progress", api.ListProgressHandler(progressStore))
			pr.Get("/progress/{categoryID}", api.GetProgressHandler(progressStore))
			pr.Put("/progress/{categoryID}", api.UpsertProgressHandler(progressStore))
			pr.Delete("/progress/{categoryID}", api.DeleteProgressHandler(progressStore))
		})

		ar.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
	return http.ListenAndServe(cfg.HTTPAddr, r)
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
