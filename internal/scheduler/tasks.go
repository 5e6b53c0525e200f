// Package scheduler enqueues and processes the delayed appointment reminder
// tasks via asynq. The payload carries everything the worker needs so the
// worker process runs without store access.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAppointmentReminder = "appointments.reminder"

type AppointmentReminderPayload struct {
	RecordID      string `json:"recordId"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Topic         string `json:"topic"`
	DateFormatted string `json:"dateFormatted"`
	TimeFormatted string `json:"timeFormatted"`
}

func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentReminder, data), nil
}

func ParseAppointmentReminderPayload(task *asynq.Task) (AppointmentReminderPayload, error) {
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AppointmentReminderPayload{}, err
	}
	return payload, nil
}
