package job

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Job 标准 Job 结构
type Job struct {
	Payload *JobPayload `json:"payload"`
}

// JobPayload Job 负载
type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

// JobPayloadData Job 数据
type JobPayloadData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（TraceID）
	ActionType string `json:"action_type"` // 动作类型（路由键）
	ID         string `json:"id"`          // 业务 ID

	// 业务数据
	Data interface{} `json:"data"`
}

// Meta 元数据
type Meta struct {
	RequestID  string
	ActionType string
	ID         string
}

// New 构造标准 Job（自动生成 RequestID）
func New(actionType, id string, data interface{}) *Job {
	return &Job{
		Payload: &JobPayload{
			Data: &JobPayloadData{
				RequestID:  uuid.New().String(),
				ActionType: actionType,
				ID:         id,
				Data:       data,
			},
		},
	}
}

// Meta 提取元数据
func (j *Job) Meta() *Meta {
	d := j.Payload.Data
	return &Meta{RequestID: d.RequestID, ActionType: d.ActionType, ID: d.ID}
}

// DecodeData 将业务数据解码到 out
func DecodeData(payload interface{}, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal business data failed: %w", err)
	}
	return nil
}
