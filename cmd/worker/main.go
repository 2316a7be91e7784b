package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"eduonline/internal/announce"
	"eduonline/internal/config"
	"eduonline/internal/metrics"
	"eduonline/internal/notify"
	"eduonline/internal/queue"
	"eduonline/internal/roster"
	"eduonline/internal/store"
)

// Worker drains the job queue and fans notifications out to the API
// instances over the notify bus.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	users := roster.NewService(roster.NewPGStore(db.Client))
	bus := notify.NewRedisBus(redisClient.Client)

	jobs, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for jobs...")
	for job := range jobs {
		switch job.Type {
		case queue.JobNotify:
			handleNotify(ctx, users, bus, job.Body)
		default:
			log.Printf("skipping unknown job type %q", job.Type)
		}
	}

	log.Println("worker stopped")
}

// handleNotify resolves the audience to identity ids and publishes the
// rendered notification for the API instances to deliver.
func handleNotify(ctx context.Context, users *roster.Service, bus notify.Bus, body []byte) {
	var fanout announce.FanoutJob
	if err := json.Unmarshal(body, &fanout); err != nil {
		log.Printf("notify job: bad payload: %v", err)
		return
	}

	msg := notify.Message{Notification: fanout.Notification}
	switch {
	case len(fanout.Audience.IdentityIDs) > 0:
		msg.IdentityIDs = fanout.Audience.IdentityIDs
	case fanout.Audience.Role == "" || fanout.Audience.Role == "all":
		msg.Broadcast = true
	default:
		idents, err := users.List(ctx, roster.Role(fanout.Audience.Role))
		if err != nil {
			log.Printf("notify job: list %s identities failed: %v", fanout.Audience.Role, err)
			return
		}
		for _, id := range idents {
			if !id.Archived {
				msg.IdentityIDs = append(msg.IdentityIDs, id.ID)
			}
		}
		if len(msg.IdentityIDs) == 0 {
			return
		}
	}

	if err := bus.Publish(ctx, msg); err != nil {
		log.Printf("notify job: bus publish failed: %v", err)
		return
	}

	kind := fanout.Notification.Kind
	if kind == "" {
		kind = "generic"
	}
	metrics.NotificationsFanned.WithLabelValues(kind).Inc()
	log.Printf("notification %q fanned to %d targets (broadcast=%v)",
		fanout.Notification.Title, len(msg.IdentityIDs), msg.Broadcast)
}
