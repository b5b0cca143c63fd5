package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAttentionScan = "leads.attention.scan"

const TaskHotLeadNotify = "leads.hot.notify"

type HotLeadNotifyPayload struct {
	LeadID   string `json:"leadId"`
	UserID   string `json:"userId"`
	LeadName string `json:"leadName"`
	AIScore  int    `json:"aiScore"`
}

func NewAttentionScanTask() *asynq.Task {
	return asynq.NewTask(TaskAttentionScan, nil)
}

func NewHotLeadNotifyTask(payload HotLeadNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHotLeadNotify, data), nil
}

func ParseHotLeadNotifyPayload(task *asynq.Task) (HotLeadNotifyPayload, error) {
	var payload HotLeadNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return HotLeadNotifyPayload{}, err
	}
	return payload, nil
}
