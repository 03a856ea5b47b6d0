package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"attendverify/internal/attendance"
	"attendverify/internal/bus"
	"attendverify/internal/config"
	"attendverify/internal/store"
)

// Worker tails a session's change feed and recomputes its analytics snapshot
// on every attendance write, the refetch-on-signal pattern dashboards use.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := os.Getenv("WATCH_SESSION_ID")
	if sessionID == "" {
		log.Fatal("WATCH_SESSION_ID required")
	}

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
	changeBus := bus.NewRedis(redisClient.Client, "")
	ledger := attendance.NewPostgresLedger(db.Client)

	events, err := changeBus.Subscribe(ctx, bus.SessionTopic(sessionID))
	if err != nil {
		log.Fatalf("bus subscribe failed: %v", err)
	}

	log.Printf("worker started, watching session %s", sessionID)
	for evt := range events {
		if evt.Kind != bus.KindAttendance {
			continue
		}

		records, err := ledger.ListBySession(ctx, sessionID)
		if err != nil {
			log.Printf("refetch session %s failed: %v", sessionID, err)
			continue
		}
		summary := attendance.Summarize(records)
		log.Printf("session %s: total=%d present=%d late=%d absent=%d rate=%.0f%% checks=%s",
			sessionID, summary.Total, summary.Present, summary.Late, summary.Absent,
			summary.AttendanceRate*100, checkCounts(summary))
	}

	log.Println("worker stopped")
}

func checkCounts(s attendance.Summary) string {
	return strings.Join([]string{
		"face:" + strconv.Itoa(s.FaceVerified),
		"geo:" + strconv.Itoa(s.GeoVerified),
		"liveness:" + strconv.Itoa(s.LivenessVerified),
	}, " ")
}
