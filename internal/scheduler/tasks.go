package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskStorageCleanup = "storage.cleanup"

// StorageCleanupPayload identifies an orphaned upload to remove.
type StorageCleanupPayload struct {
	Bucket  string `json:"bucket"`
	FileKey string `json:"fileKey"`
}

func NewStorageCleanupTask(payload StorageCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStorageCleanup, data), nil
}

func ParseStorageCleanupPayload(task *asynq.Task) (StorageCleanupPayload, error) {
	var payload StorageCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return StorageCleanupPayload{}, err
	}
	return payload, nil
}
