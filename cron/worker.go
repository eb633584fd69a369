package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pawcare/config"
	"pawcare/models"
	"pawcare/services/notification"
	"pawcare/services/scheduling"
	"pawcare/services/tasks"

	"github.com/hibiken/asynq"
)

// InitWorker runs the async task worker in the background. It handles the
// durable appointment reminders and the pending-appointment reaper; both
// survive process restarts because the queue lives in redis.
func InitWorker(notifSvc notification.NotificationService, lifecycle scheduling.LifecycleService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(notifSvc))
	mux.HandleFunc(tasks.TypeExpirePending, handleExpirePendingTask(lifecycle))

	// Start async worker with retry logic
	go func() {
		log.Println("[Worker] Starting async task worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		msg := fmt.Sprintf("Reminder: appointment with %s today at %s", p.ProviderName, p.StartTime)
		notifSvc.Emit(ctx, p.UserID, models.NotificationReminder, msg, p.AppointmentID)
		return nil
	}
}

func handleExpirePendingTask(lifecycle scheduling.LifecycleService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ExpirePendingPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpirePendingHandler] Invalid payload: %v", err)
			return err
		}
		return lifecycle.ExpirePending(ctx, p.AppointmentID)
	}
}
