package api

import "time"

// timeFormat is used for RFC3339 timestamps in API payloads.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// RunConfig mirrors the config snapshot captured at start.
type RunConfig struct {
	BatchSize   int `json:"batchSize"`
	Concurrency int `json:"concurrency"`
	Quality     int `json:"quality"`
	MaxWidth    int `json:"maxWidth"`
}

// StatusResponse is the progress snapshot served to polling clients.
type StatusResponse struct {
	Total         int       `json:"total"`
	Processed     int       `json:"processed"`
	Pending       int       `json:"pending"`
	Claimed       int       `json:"claimed"`
	Errors        int       `json:"errors"`
	RunStatus     string    `json:"runStatus"`
	Config        RunConfig `json:"config"`
	StartedAt     string    `json:"startedAt,omitempty"`
	LastUpdatedAt string    `json:"lastUpdatedAt,omitempty"`
	CompletedAt   string    `json:"completedAt,omitempty"`
}

// ErrorItem describes one failed photo for the errors view.
type ErrorItem struct {
	ID           int64  `json:"id"`
	SourceRef    string `json:"sourceRef"`
	FileName     string `json:"fileName,omitempty"`
	ErrorMessage string `json:"errorMessage"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// ErrorListResponse wraps the failed photos and their total count.
type ErrorListResponse struct {
	Errors []ErrorItem `json:"errors"`
	Total  int         `json:"total"`
}

// RunResponse reports the run status after a control operation.
type RunResponse struct {
	RunStatus string `json:"runStatus"`
}

// RetryResponse reports how many error photos were requeued.
type RetryResponse struct {
	Requeued int64 `json:"requeued"`
}

// EnqueueRequest registers a photo as needing migration.
type EnqueueRequest struct {
	SourceRef string `json:"sourceRef"`
	FileName  string `json:"fileName,omitempty"`
}

// EnqueueResponse reports the ledger row for an enqueue request.
type EnqueueResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Created bool   `json:"created"`
}

// StartRequest optionally overrides config defaults for the run snapshot.
type StartRequest struct {
	BatchSize   int `json:"batchSize,omitempty"`
	Concurrency int `json:"concurrency,omitempty"`
	Quality     int `json:"quality,omitempty"`
	MaxWidth    int `json:"maxWidth,omitempty"`
}

// HealthResponse summarizes ledger reachability.
type HealthResponse struct {
	Healthy    bool   `json:"healthy"`
	LedgerPath string `json:"ledgerPath"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorResponse carries an API error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(timeFormat)
}
