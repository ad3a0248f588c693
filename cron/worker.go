package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fieldbot/config"
	"fieldbot/models"
	"fieldbot/services/notification"

	"github.com/hibiken/asynq"
)

const TypeBookingReminder = "booking:reminder"

// reminderPayload is the task body for a scheduled booking reminder.
type reminderPayload struct {
	JobID          string `json:"jobId"`
	OrganizationID string `json:"organizationId"`
	CustomerPhone  string `json:"customerPhone"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
}

// ReminderService enqueues and processes booking reminders through asynq.
type ReminderService struct {
	client   *asynq.Client
	location *time.Location
	lead     time.Duration
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}
}

// NewReminderService creates the enqueue side.
func NewReminderService(location *time.Location) *ReminderService {
	lead := time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute
	if lead <= 0 {
		lead = time.Hour
	}
	if location == nil {
		location = time.Local
	}
	return &ReminderService{
		client:   asynq.NewClient(redisOpts()),
		location: location,
		lead:     lead,
	}
}

// ScheduleBookingReminder enqueues a reminder to fire before the visit.
// Visits starting too soon get no reminder.
func (s *ReminderService) ScheduleBookingReminder(_ context.Context, job *models.Job, customerPhone string) error {
	visitAt, err := time.ParseInLocation("2006-01-02 15:04", job.Date+" "+job.StartTime, s.location)
	if err != nil {
		return fmt.Errorf("reminder: bad visit time: %w", err)
	}
	fireAt := visitAt.Add(-s.lead)
	if fireAt.Before(time.Now()) {
		return nil
	}

	payload, err := json.Marshal(reminderPayload{
		JobID:          job.ID,
		OrganizationID: job.OrganizationID,
		CustomerPhone:  customerPhone,
		Date:           job.Date,
		StartTime:      job.StartTime,
	})
	if err != nil {
		return fmt.Errorf("reminder: %w", err)
	}

	task := asynq.NewTask(TypeBookingReminder, payload)
	if _, err := s.client.Enqueue(task, asynq.ProcessAt(fireAt)); err != nil {
		return fmt.Errorf("reminder: failed to enqueue: %w", err)
	}
	return nil
}

func (s *ReminderService) Close() error {
	return s.client.Close()
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(sender notification.MessageSender) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingReminder, handleReminderTask(sender))

	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(sender notification.MessageSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p reminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		text := fmt.Sprintf("Te recordamos tu visita técnica de hoy %s a las %s. ¡Te esperamos!", p.Date, p.StartTime)
		if err := sender.SendText(ctx, p.OrganizationID, p.CustomerPhone, text); err != nil {
			log.Printf("[ReminderHandler] failed to deliver reminder for job %s: %v", p.JobID, err)
			return err
		}
		return nil
	}
}
