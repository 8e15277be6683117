package types

import "time"

// ProgressMessage represents a WebSocket progress update message
type ProgressMessage struct {
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId"`
	Type      string    `json:"type"`     // "progress", "status", "complete", "error"
	Progress  float64   `json:"progress"` // 0-100 percentage
	Status    string    `json:"status"`   // current task status
	FileName  string    `json:"fileName"` // file being downloaded
	Speed     string    `json:"speed"`    // download speed like "2.1 MB/s"
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
