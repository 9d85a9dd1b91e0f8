package events

import "time"

// WorkerResult — payload события worker:result.
type WorkerResult struct {
	RequestID   string    `json:"requestId"`
	Result      string    `json:"result"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completedAt"`
}

// WorkerError — payload события worker:error.
// WillRetry = true — задача возвращена в очередь для следующей попытки.
type WorkerError struct {
	RequestID    string    `json:"requestId"`
	Error        string    `json:"error"`
	Status       string    `json:"status"`
	FailedAt     time.Time `json:"failedAt"`
	AttemptsMade int       `json:"attemptsMade"`
	WillRetry    bool      `json:"willRetry"`
}
