package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/database"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/http/handlers"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/http/middleware"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/acuity"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/mailchimp"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/pixel"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/integration/thanksio"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/mail"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/queue"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/scheduler"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/usecase"
)

func main() {
	godotenv.Load()

	ctx := context.Background()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ Falha ao conectar no Postgres: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("❌ Falha ao conectar no RabbitMQ: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	recordRepo := database.NewRecordRepository(db)
	tenantRepo := database.NewTenantRepository(db)
	watermarkRepo := database.NewWatermarkRepository(db)

	// 2. Gateways e Adapters
	creds := acuity.NewCredentialCache(
		&http.Client{Timeout: 30 * time.Second},
		os.Getenv("ACUITY_AUTH_URL"),
		os.Getenv("ACUITY_CLIENT_ID"),
		os.Getenv("ACUITY_CLIENT_SECRET"),
		os.Getenv("ACUITY_API_KEY"),
		os.Getenv("ACUITY_API_SECRET"),
	)
	resolver := acuity.NewClient(os.Getenv("ACUITY_URL"), creds)
	pixelClient := pixel.NewClient(os.Getenv("PIXEL_API_KEY"), os.Getenv("PIXEL_URL"))
	mailchimpClient := mailchimp.NewClient(os.Getenv("MAILCHIMP_API_KEY"))
	thanksioClient := thanksio.NewClient(os.Getenv("THANKSIO_API_KEY"), os.Getenv("THANKSIO_URL"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	reportSender := mail.NewReportSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		envOr("MAIL_FROM", "pipeline@visitoriq.pro"), os.Getenv("OPS_EMAIL"),
	)

	// 3. UseCases
	enrichUC := usecase.NewEnrichUseCase(tenantRepo, recordRepo, resolver, usecase.DefaultRetryPolicy())
	if n, err := strconv.Atoi(os.Getenv("ENRICH_CONCURRENCY")); err == nil && n > 0 {
		enrichUC.Concurrency = n
	}
	pixelSyncUC := usecase.NewPixelSyncUseCase(tenantRepo, recordRepo, watermarkRepo, pixelClient, producer)
	emailSyncUC := usecase.NewEmailChannelSync(tenantRepo, recordRepo, mailchimpClient)
	noteSyncUC := usecase.NewNoteChannelSync(tenantRepo, recordRepo, thanksioClient)

	// 4. Worker (consome a fila e chama o motor de enriquecimento)
	worker := queue.NewWorker(rabbitMQ.Ch, enrichUC)
	go worker.Start(queue.QueueName)

	// 5. Scheduler: timezone fixa, independente da máquina
	loc, err := time.LoadLocation(envOr("SCHEDULER_TZ", "America/New_York"))
	if err != nil {
		log.Fatalf("❌ Timezone inválida em SCHEDULER_TZ: %v", err)
	}
	sched := scheduler.New(loc)
	sched.OnResult = func(jobName string, result scheduler.Result) {
		outcome := "ok"
		if !result.OK {
			outcome = "failed"
		}
		middleware.RecordJobRun(jobName, outcome)

		if !result.OK && os.Getenv("OPS_EMAIL") != "" {
			report := mail.JobReportData{
				JobName: jobName,
				Message: result.Message,
				Count:   result.Count,
				FiredAt: result.At,
			}
			if err := reportSender.SendJobFailure(report); err != nil {
				log.Printf("⚠️ [Mail] Falha ao enviar digest de %s: %v", jobName, err)
			}
		}
	}

	registerJob(sched, "pixel_sync", envOr("CRON_PIXEL_SYNC", "*/15 * * * *"), func(ctx context.Context) (int, error) {
		stats, err := pixelSyncUC.Execute(ctx)
		middleware.RecordIngestion(stats.RecordsUpserted)
		return stats.RecordsUpserted, err
	})
	registerJob(sched, "enrichment_sweep", envOr("CRON_ENRICHMENT_SWEEP", "0 * * * *"), func(ctx context.Context) (int, error) {
		stats, err := enrichUC.EnrichAll(ctx)
		middleware.RecordEnrichments("enriched", stats.Enriched)
		middleware.RecordEnrichments("failed", stats.Failed)
		middleware.RecordEnrichments("skipped", stats.Skipped)
		return stats.Processed(), err
	})
	registerJob(sched, "email_sync", envOr("CRON_EMAIL_SYNC", "30 8 * * *"), func(ctx context.Context) (int, error) {
		stats, err := emailSyncUC.Execute(ctx)
		middleware.RecordChannelPushes("email", "pushed", stats.Pushed)
		middleware.RecordChannelPushes("email", "failed", stats.Failed)
		return stats.Pushed, err
	})
	registerJob(sched, "note_sync", envOr("CRON_NOTE_SYNC", "0 9 * * *"), func(ctx context.Context) (int, error) {
		stats, err := noteSyncUC.Execute(ctx)
		middleware.RecordChannelPushes("note", "pushed", stats.Pushed)
		middleware.RecordChannelPushes("note", "failed", stats.Failed)
		return stats.Pushed, err
	})
	go sched.Start(ctx)

	// 6. Handlers
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)
	jobHandler := handlers.NewJobHandler(sched)
	enrichHandler := handlers.NewEnrichHandler(enrichUC)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/jobs", jobHandler.List)
	r.Get("/jobs/{name}/status", jobHandler.Status)
	r.Post("/jobs/{name}/trigger", jobHandler.Trigger)
	r.Post("/enrich", enrichHandler.Enrich)

	port := ":" + envOr("PORT", "8080")
	log.Printf("🔥 VisitorIQ Pipeline rodando na porta %s (tz=%s)", port, loc)
	http.ListenAndServe(port, r)
}

func registerJob(s *scheduler.Scheduler, name, expr string, handler scheduler.Handler) {
	if err := s.Register(name, expr, handler); err != nil {
		log.Fatalf("❌ Falha ao registrar job %s: %v", name, err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
