package scheduler

import (
	"context"
	"fmt"

	"portfolio_backend/internal/email"
	"portfolio_backend/platform/config"
	"portfolio_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes the reminder queue and delivers the reminder email to the
// visitor. Delivery failures are returned so asynq retries the task.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskAppointmentReminder, w.handleAppointmentReminder)

	return w, nil
}

func (w *Worker) handleAppointmentReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		return err
	}

	if payload.Email == "" {
		return nil
	}

	err = w.sender.SendAppointmentReminder(ctx, payload.Email, email.AppointmentData{
		FullName:      payload.FullName,
		Email:         payload.Email,
		Topic:         payload.Topic,
		DateFormatted: payload.DateFormatted,
		TimeFormatted: payload.TimeFormatted,
	})
	if err != nil {
		w.log.Error("reminder delivery failed", "recordId", payload.RecordID, "error", err)
		return err
	}

	w.log.Info("reminder delivered", "recordId", payload.RecordID)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
