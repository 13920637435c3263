package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/habits/internal/config"
	"example.com/habits/internal/consumer"
	"example.com/habits/internal/notify"
	persistence "example.com/habits/internal/persistence/postgres"
)

// The reminder daemon consumes habit events, keeps one-shot reminder timers
// armed, and surfaces notifications. Timers are in-memory only, so on startup
// it primes them from the store.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	notifier := notify.NewLogNotifier(nil)
	scheduler := notify.NewScheduler(notifier)
	defer scheduler.Stop()

	repo := persistence.NewRepository(pool)
	primeReminders(ctx, repo, scheduler)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.ReminderGroupID,
		GroupTopics: []string{"habit_events", "completion_events"},
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	handler := notify.NewEventHandler(scheduler, notifier)
	processor := consumer.NewProcessor(reader, handler)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: getMetricsAddress(), Handler: mux, ReadTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		cancel()
	}()

	log.Printf("reminder daemon consuming from %v", cfg.KafkaBrokers)
	if err := processor.Run(ctx); err != nil && err != context.Canceled {
		log.Printf("processor stopped: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

func primeReminders(ctx context.Context, repo *persistence.Repository, scheduler *notify.Scheduler) {
	habits, err := repo.ListReminders(ctx)
	if err != nil {
		log.Printf("failed to prime reminders: %v", err)
		return
	}
	for _, habit := range habits {
		if _, err := scheduler.Schedule(habit.ID, habit.Name, habit.ReminderTime); err != nil {
			log.Printf("failed to schedule reminder for habit %s: %v", habit.ID, err)
		}
	}
	log.Printf("primed %d reminders", len(habits))
}

func getMetricsAddress() string {
	if addr := os.Getenv("METRICS_ADDRESS"); addr != "" {
		return addr
	}
	return ":9090"
}
