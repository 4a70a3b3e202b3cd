package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSweepPending = "analysis.sweep_pending"

type SweepPendingPayload struct {
	Limit int `json:"limit"`
}

func NewSweepPendingTask(payload SweepPendingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSweepPending, data), nil
}

func ParseSweepPendingPayload(task *asynq.Task) (SweepPendingPayload, error) {
	var payload SweepPendingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SweepPendingPayload{}, err
	}
	return payload, nil
}
