// jobmate-trust-service
//
// Trust & safety for job postings. Exposes a REST API and a gRPC service used
// by the Gateway to implement:
//   - analyzeJob(jobData): heuristic scoring + enforcement (approve / flag / ban)
//   - reportScam / checkScam: manual reports, duplicate matching, user warnings
//   - checkBanned(company|url|email): ban registry lookups
//   - admin moderation: review queue, report verification
//
// Publishes EVENT_SCAM_REPORTED, EVENT_SCAM_VERIFIED, EVENT_JOB_FLAGGED and
// EVENT_JOB_BANNED to Redis for Gateway SSE forward.
//
// Usage:
//
//	trust-service              run the service
//	trust-service migrate up   apply schema migrations and exit
//	trust-service migrate down revert schema migrations and exit
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"jobmate/trust-service/internal/auth"
	"jobmate/trust-service/internal/config"
	"jobmate/trust-service/internal/db"
	"jobmate/trust-service/internal/events"
	"jobmate/trust-service/internal/grpcserver"
	"jobmate/trust-service/internal/httpapi"
	"jobmate/trust-service/internal/scam"
	"jobmate/trust-service/internal/scheduler"
	"jobmate/trust-service/internal/store/postgres"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[trust-service] Config error: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(cfg, os.Args[2:])
		return
	}

	if cfg.MigrateOnStart {
		log.Println("[trust-service] Applying migrations…")
		if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
			log.Fatalf("[trust-service] Migrations: %v", err)
		}
		log.Println("[trust-service] Migrations applied ✓")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[trust-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("[trust-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[trust-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[trust-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[trust-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[trust-service] Redis connected ✓")

	svc := scam.NewService(postgres.New(pool), events.NewRedisPublisher(rdb))

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.ReviewSweepMinutes)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[trust-service] Scheduler: %v", err)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	router := httpapi.NewHandler(svc, auth.NewVerifier(cfg.JWTSecret)).Routes()
	router.Get("/health", healthHandler)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		log.Printf("[trust-service] v%s HTTP listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[trust-service] HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[trust-service] gRPC listen: %v", err)
	}
	gsrv := grpc.NewServer()
	grpcserver.Register(gsrv, grpcserver.NewServer(svc))

	go func() {
		log.Printf("[trust-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := gsrv.Serve(lis); err != nil {
			log.Fatalf("[trust-service] gRPC server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[trust-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[trust-service] Shutdown error: %v", err)
	}
	gsrv.GracefulStop()
	sched.Stop()
	log.Println("[trust-service] Stopped.")
}

func runMigrate(cfg *config.Config, args []string) {
	if len(args) != 1 {
		log.Fatal("[trust-service] usage: migrate up|down")
	}
	var err error
	switch args[0] {
	case "up":
		err = db.MigrateUp(cfg.DatabaseURL)
	case "down":
		err = db.MigrateDown(cfg.DatabaseURL)
	default:
		log.Fatalf("[trust-service] unknown migrate direction %q", args[0])
	}
	if err != nil {
		log.Fatalf("[trust-service] Migrate %s: %v", args[0], err)
	}
	log.Printf("[trust-service] Migrate %s done ✓", args[0])
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "trust-service",
		"version": version,
	})
}
