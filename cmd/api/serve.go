package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/patient-registry/internal/config"
	authhandler "github.com/jwalitptl/patient-registry/internal/handler/auth"
	filehandler "github.com/jwalitptl/patient-registry/internal/handler/file"
	followuphandler "github.com/jwalitptl/patient-registry/internal/handler/followup"
	"github.com/jwalitptl/patient-registry/internal/handler/health"
	investigationhandler "github.com/jwalitptl/patient-registry/internal/handler/investigation"
	patienthandler "github.com/jwalitptl/patient-registry/internal/handler/patient"
	"github.com/jwalitptl/patient-registry/internal/handler/prometheus"
	"github.com/jwalitptl/patient-registry/internal/handler/static"
	surgeryhandler "github.com/jwalitptl/patient-registry/internal/handler/surgery"
	transplanthandler "github.com/jwalitptl/patient-registry/internal/handler/transplant"
	treatmenthandler "github.com/jwalitptl/patient-registry/internal/handler/treatment"
	userhandler "github.com/jwalitptl/patient-registry/internal/handler/user"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/repository/postgres"
	"github.com/jwalitptl/patient-registry/internal/router"
	authservice "github.com/jwalitptl/patient-registry/internal/service/auth"
	eventservice "github.com/jwalitptl/patient-registry/internal/service/event"
	fileservice "github.com/jwalitptl/patient-registry/internal/service/file"
	followupservice "github.com/jwalitptl/patient-registry/internal/service/followup"
	investigationservice "github.com/jwalitptl/patient-registry/internal/service/investigation"
	patientservice "github.com/jwalitptl/patient-registry/internal/service/patient"
	surgeryservice "github.com/jwalitptl/patient-registry/internal/service/surgery"
	transplantservice "github.com/jwalitptl/patient-registry/internal/service/transplant"
	treatmentservice "github.com/jwalitptl/patient-registry/internal/service/treatment"
	userservice "github.com/jwalitptl/patient-registry/internal/service/user"
	"github.com/jwalitptl/patient-registry/pkg/security"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ttl, err := cfg.JWT.TTL()
	if err != nil {
		return err
	}

	// Repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	comorbidityRepo := postgres.NewComorbidityRepository(base)
	investigationRepo := postgres.NewInvestigationRepository(base)
	treatmentRepo := postgres.NewTreatmentRepository(base)
	conservativeRepo := postgres.NewConservativeTreatmentRepository(base)
	surgeryRepo := postgres.NewSurgeryRepository(base)
	transplantRepo := postgres.NewTransplantRepository(base)
	followUpRepo := postgres.NewFollowUpRepository(base)
	fileRepo := postgres.NewFileRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	store, err := fileservice.NewLocalStore(cfg.Files.Dir)
	if err != nil {
		return err
	}

	// Services
	events := eventservice.NewService(outboxRepo)
	tokens := security.NewTokenManager(cfg.JWT.Secret, ttl, cfg.JWT.Issuer)
	authSvc := authservice.NewService(userRepo, security.NewBcryptHasher(cfg.Security.BcryptCost), tokens, events)
	userSvc := userservice.NewService(userRepo, events)
	patientSvc := patientservice.NewService(patientRepo, comorbidityRepo, events)
	investigationSvc := investigationservice.NewService(investigationRepo, patientRepo, events)
	treatmentSvc := treatmentservice.NewService(treatmentRepo, patientRepo, events)
	conservativeSvc := treatmentservice.NewConservativeService(conservativeRepo, patientRepo, events)
	surgerySvc := surgeryservice.NewService(surgeryRepo, patientRepo, events)
	transplantSvc := transplantservice.NewService(transplantRepo, patientRepo, events)
	followUpSvc := followupservice.NewService(followUpRepo, patientRepo, events)
	fileSvc := fileservice.NewService(fileRepo, patientRepo, patientSvc, store, events, fileservice.Options{
		MaxUploadBytes: cfg.Files.MaxUploadMB << 20,
		ExportMaxRows:  cfg.Files.ExportMaxRows,
	})

	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		authhandler.NewHandler(authSvc),
		health.NewHandler(db, cfg.App.Environment).Check,
		static.NewHandler(cfg.App.StaticDir).NoRoute,
		prometheus.New("patient_registry"),
		router.NewRouterConfig(cfg),
		userhandler.NewHandler(userSvc),
		patienthandler.NewHandler(patientSvc),
		investigationhandler.NewHandler(investigationSvc),
		treatmenthandler.NewHandler(treatmentSvc),
		treatmenthandler.NewConservativeHandler(conservativeSvc),
		surgeryhandler.NewHandler(surgerySvc),
		transplanthandler.NewHandler(transplantSvc),
		followuphandler.NewHandler(followUpSvc),
		filehandler.NewHandler(fileSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.App.Port).
			Str("environment", cfg.App.Environment).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
