package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/alerts"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/api"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/auth"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/cache"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/config"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/email"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/ibge"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/metrics"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/middleware"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/migrate"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/seed"
)

func main() {
	cfg := config.Load()
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			log.Fatalf("conexão postgres (migrações): %v", err)
		}
		if err := migrate.Run(context.Background(), gdb, "migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		if err := seed.Run(context.Background(), gdb); err != nil {
			log.Printf("seed (ignorado se já aplicado): %v", err)
		}
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}

		pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("conexão postgres: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping postgres: %v", err)
		}
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no database"}`))
			return
		}
		if err := pool.Ping(context.Background()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	appCache := cache.New(30 * time.Second)
	bus := alerts.NewBus()
	h := &api.Handler{
		Pool:   pool,
		Cfg:    cfg,
		Cache:  appCache,
		Alerts: bus,
		IBGE:   ibge.NewClient(cfg.IBGEBaseURL, appCache, logger),
	}
	h.SetHashPassword(auth.HashPassword)

	smtpPort, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		smtpPort = 1025
	}
	mailCfg := &email.Config{
		Host:     cfg.SMTPHost,
		Port:     smtpPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		FromName: cfg.SMTPFromName,
		FromAddr: cfg.SMTPFromEmail,
	}
	mailCfg.LogConfigSummary()
	h.SetSendFormLinkEmail(mailCfg.SendAnamnesisFormLink)
	h.SetSendReferralAssignedEmail(mailCfg.SendReferralAssigned)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	// Formulário público: sem auth obrigatória, mas um JWT presente
	// enriquece o contexto (staff abrindo o próprio link).
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JWTSecret)
	apiRouter.Handle("/anamnesis/form/{token}", optionalAuth(http.HandlerFunc(h.GetPublicForm))).Methods(http.MethodGet)
	// A mesma rota atende o responsável (?token=) e a edição interna.
	apiRouter.Handle("/anamnesis/{id}/response", optionalAuth(http.HandlerFunc(h.SubmitAnamnesisResponse))).Methods(http.MethodPut)
	apiRouter.HandleFunc("/ibge/states", h.ListStates).Methods(http.MethodGet)
	apiRouter.HandleFunc("/ibge/cities/{uf}", h.ListCities).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(cfg.JWTSecret, bus))
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)

	adminOnly := middleware.RequireRole(auth.RoleAdmin)
	clerks := middleware.RequireRole(auth.RoleAdmin, auth.RoleSecretary)
	clinical := middleware.RequireRole(auth.RoleAdmin, auth.RoleSecretary, auth.RoleProfessional)
	professionals := middleware.RequireRole(auth.RoleAdmin, auth.RoleProfessional)
	withAssistants := middleware.RequireRole(auth.RoleAdmin, auth.RoleProfessional, auth.RoleAssistant)

	// Gestão de usuários internos. Cada tela da console opera sobre um papel.
	protected.Handle("/user", adminOnly(http.HandlerFunc(h.ListStaff(auth.RoleProfessional, auth.RoleAdmin)))).Methods(http.MethodGet)
	protected.Handle("/user", adminOnly(http.HandlerFunc(h.CreateStaff("", auth.RoleProfessional, auth.RoleAdmin)))).Methods(http.MethodPost)
	protected.Handle("/user/{id}", adminOnly(http.HandlerFunc(h.UpdateStaff(auth.RoleProfessional, auth.RoleAdmin)))).Methods(http.MethodPut)
	protected.Handle("/user/{id}", adminOnly(http.HandlerFunc(h.DeleteStaff(auth.RoleProfessional, auth.RoleAdmin)))).Methods(http.MethodDelete)
	protected.Handle("/secretary", adminOnly(http.HandlerFunc(h.ListStaff(auth.RoleSecretary)))).Methods(http.MethodGet)
	protected.Handle("/secretary", adminOnly(http.HandlerFunc(h.CreateStaff(auth.RoleSecretary, auth.RoleSecretary)))).Methods(http.MethodPost)
	protected.Handle("/secretary/{id}", adminOnly(http.HandlerFunc(h.UpdateStaff(auth.RoleSecretary)))).Methods(http.MethodPut)
	protected.Handle("/secretary/{id}", adminOnly(http.HandlerFunc(h.DeleteStaff(auth.RoleSecretary)))).Methods(http.MethodDelete)
	// Profissionais listam assistentes ao atribuir encaminhamentos.
	protected.Handle("/assistant", professionals(http.HandlerFunc(h.ListStaff(auth.RoleAssistant)))).Methods(http.MethodGet)
	protected.Handle("/assistant", adminOnly(http.HandlerFunc(h.CreateStaff(auth.RoleAssistant, auth.RoleAssistant)))).Methods(http.MethodPost)
	protected.Handle("/assistant/{id}", adminOnly(http.HandlerFunc(h.UpdateStaff(auth.RoleAssistant)))).Methods(http.MethodPut)
	protected.Handle("/assistant/{id}", adminOnly(http.HandlerFunc(h.DeleteStaff(auth.RoleAssistant)))).Methods(http.MethodDelete)

	protected.Handle("/guardian", clerks(http.HandlerFunc(h.CreateGuardian))).Methods(http.MethodPost)
	protected.Handle("/guardian", clinical(http.HandlerFunc(h.ListGuardians))).Methods(http.MethodGet)
	protected.Handle("/guardian/{id}", clinical(http.HandlerFunc(h.GetGuardian))).Methods(http.MethodGet)
	protected.Handle("/guardian/{id}", clerks(http.HandlerFunc(h.UpdateGuardian))).Methods(http.MethodPut)
	protected.Handle("/guardian/{id}", clerks(http.HandlerFunc(h.DeleteGuardian))).Methods(http.MethodDelete)

	protected.Handle("/patient", clerks(http.HandlerFunc(h.CreatePatient))).Methods(http.MethodPost)
	protected.Handle("/patient", clinical(http.HandlerFunc(h.ListPatients))).Methods(http.MethodGet)
	protected.Handle("/patient/{id}", clinical(http.HandlerFunc(h.GetPatient))).Methods(http.MethodGet)
	protected.Handle("/patient/{id}/photo", clinical(http.HandlerFunc(h.GetPatientPhoto))).Methods(http.MethodGet)
	protected.Handle("/patient/{id}", clerks(http.HandlerFunc(h.UpdatePatient))).Methods(http.MethodPut)
	protected.Handle("/patient/{id}", clerks(http.HandlerFunc(h.DeletePatient))).Methods(http.MethodDelete)

	// Rotas fixas antes das rotas com {id}.
	protected.Handle("/anamnesis/history", clinical(http.HandlerFunc(h.AnamnesisHistory))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/bypatient/{patientId}", clinical(http.HandlerFunc(h.AnamnesesByPatient))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/referral", professionals(http.HandlerFunc(h.CreateReferral))).Methods(http.MethodPost)
	protected.Handle("/anamnesis/referral/findByAssistant/{assistantId}", withAssistants(http.HandlerFunc(h.ReferralsByAssistant))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/referral/findById/{referralId}", withAssistants(http.HandlerFunc(h.GetReferralByID))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/referral/findById/{referralId}/pdf", withAssistants(http.HandlerFunc(h.GetReferralPDF))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/referral/{id}/assign-assistant", professionals(http.HandlerFunc(h.AssignAssistantDirect))).Methods(http.MethodPut)
	protected.Handle("/anamnesis/referral/{id}/assign-assistant/mail", professionals(http.HandlerFunc(h.AssignAssistantMail))).Methods(http.MethodPut)
	protected.Handle("/anamnesis/referral/{patientId}", clinical(http.HandlerFunc(h.ReferralsByPatient))).Methods(http.MethodGet)
	protected.Handle("/anamnesis", clinical(http.HandlerFunc(h.CreateAnamnesis))).Methods(http.MethodPost)
	protected.Handle("/anamnesis", clinical(http.HandlerFunc(h.ListAnamneses))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/{id}", clinical(http.HandlerFunc(h.GetAnamnesis))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/{id}/status", professionals(http.HandlerFunc(h.PatchAnamnesisStatus))).Methods(http.MethodPatch)
	protected.Handle("/anamnesis/{id}", clerks(http.HandlerFunc(h.DeleteAnamnesis))).Methods(http.MethodDelete)
	protected.Handle("/anamnesis/{id}/report", clinical(http.HandlerFunc(h.GetAnamnesisReport))).Methods(http.MethodGet)
	protected.Handle("/anamnesis/{id}/referral", clinical(http.HandlerFunc(h.GetReferralForAnamnesis))).Methods(http.MethodGet)

	chain := middleware.Recover(middleware.RequestID(middleware.Timeout(cfg.RequestTimeoutSec)(middleware.CORS(cfg.CORSOrigins)(middleware.Gzip(metrics.Middleware(r))))))

	// O stream SSE fica fora do gzip e do timeout por requisição.
	sse := middleware.Recover(middleware.RequestID(middleware.CORS(cfg.CORSOrigins)(
		middleware.RequireAuth(cfg.JWTSecret, bus, http.HandlerFunc(h.StreamAlerts)))))

	root := http.NewServeMux()
	root.Handle("/api/alerts/stream", sse)
	root.Handle("/", chain)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     root,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("backend listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("backend stopped")
}
