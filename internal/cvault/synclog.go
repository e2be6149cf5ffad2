package cvault

// LogStatus classifies a sync log entry.
type LogStatus string

const (
	StatusPending LogStatus = "pending"
	StatusSuccess LogStatus = "success"
	StatusInfo    LogStatus = "info"
	StatusError   LogStatus = "error"
)

// LogEntry is one line of the ephemeral per-invocation sync log. Entries
// are observational only: never persisted, never replayed.
type LogEntry struct {
	Message string
	Status  LogStatus
}

// Reporter receives sync log entries as they are emitted, in processing
// order. Used by the CLI to drive a live progress panel. May be nil.
type Reporter func(LogEntry)
