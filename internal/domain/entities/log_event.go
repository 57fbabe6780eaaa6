package entities

import "time"

// Log stream source names
const (
	LogSourceSystem = "system"
	LogSourceScan   = "scan-script"
	LogSourceDocker = "mobsf-docker"
)

// LogEventTimeLayout is the timestamp layout of streamed log events
const LogEventTimeLayout = "2006-01-02 15:04:05"

// LogEvent is one line forwarded to dashboard clients
type LogEvent struct {
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// NewLogEvent stamps a message with the current time
func NewLogEvent(source, message string) LogEvent {
	return LogEvent{
		Source:    source,
		Timestamp: time.Now().Format(LogEventTimeLayout),
		Message:   message,
	}
}
