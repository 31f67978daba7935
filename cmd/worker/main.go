package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"schoolms/internal/attendance"
	"schoolms/internal/config"
	"schoolms/internal/queue"
	"schoolms/internal/store"
)

// Worker consumes scan events from the queue, appends audit rows and keeps
// live per-session counters in Redis. Classification itself happens in the
// API request path; this process is observability only.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "schoolms:events")
	}

	repo := attendance.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeScan {
			continue
		}

		var evt queue.ScanEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("bad scan event: %v", err)
			continue
		}

		rec := attendance.Record{
			ID:        evt.RecordID,
			SessionID: evt.SessionID,
			StudentID: evt.StudentID,
			Status:    attendance.Status(evt.Status),
			ScannedAt: evt.ScannedAt,
		}
		if err := repo.InsertAudit(ctx, uuid.NewString(), rec); err != nil {
			log.Printf("audit insert failed for record %s: %v", evt.RecordID, err)
			continue
		}

		counterKey := "schoolms:sessions:" + evt.SessionID + ":scans"
		if err := redisClient.Client.Incr(ctx, counterKey).Err(); err != nil {
			log.Printf("counter bump failed for session %s: %v", evt.SessionID, err)
		}

		log.Printf("audited scan %s: student %s -> %s", evt.RecordID, evt.StudentID, evt.Status)
	}

	log.Println("worker stopped")
}
