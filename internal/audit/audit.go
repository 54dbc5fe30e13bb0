// internal/audit/audit.go
// Append-only JSONL trail of login attempts.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Result is the outcome of one login attempt.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
)

// FailurePolicy controls what happens when the audit write itself fails.
type FailurePolicy int

const (
	// FailOpen logs the write error and lets the request proceed.
	FailOpen FailurePolicy = iota
	// FailClosed propagates the write error to the caller.
	FailClosed
)

// Record is one attempt entry. Field names and types are the wire
// contract of the log file and must not change.
type Record struct {
	Timestamp         float64 `json:"timestamp"`
	Datetime          string  `json:"datetime"`
	IPAddress         string  `json:"ip_address"`
	Endpoint          string  `json:"endpoint"`
	AttemptedUsername string  `json:"attempted_username"`
	Result            Result  `json:"result"`
	Reason            string  `json:"reason"`
	DelayS            float64 `json:"delay_s"`
}

// NewRecord builds a login attempt record stamped with the current time.
func NewRecord(ip, username string, result Result, reason string, delay time.Duration) Record {
	now := time.Now()
	return Record{
		Timestamp:         float64(now.UnixNano()) / float64(time.Second),
		Datetime:          now.Format("2006-01-02T15:04:05"),
		IPAddress:         ip,
		Endpoint:          "/login",
		AttemptedUsername: username,
		Result:            result,
		Reason:            reason,
		DelayS:            delay.Seconds(),
	}
}

// Logger appends records to a single file opened at construction,
// one JSON object per line. Writes are serialized and unbuffered, so
// every record reaches the OS before Record returns.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	policy FailurePolicy
	errLog *log.Logger
}

// NewLogger opens a fresh attempt log in dir, named after the process
// start time. errLog receives write failures under FailOpen.
func NewLogger(dir string, policy FailurePolicy, errLog *log.Logger) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating audit log directory: %w", err)
	}
	name := fmt.Sprintf("auth_attempts_%s.jsonl", time.Now().Format("20060102_1504"))
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening audit log: %w", err)
	}
	return &Logger{
		file:   f,
		path:   path,
		policy: policy,
		errLog: errLog,
	}, nil
}

// Path returns the location of the current log file.
func (l *Logger) Path() string {
	return l.path
}

// Record appends one entry. Under FailOpen a failed write is reported
// to the server log and swallowed; under FailClosed it is returned.
func (l *Logger) Record(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return l.fail(fmt.Errorf("error encoding attempt record: %w", err))
	}

	l.mu.Lock()
	_, err = l.file.Write(append(line, '\n'))
	l.mu.Unlock()

	if err != nil {
		return l.fail(fmt.Errorf("error writing attempt record: %w", err))
	}
	return nil
}

func (l *Logger) fail(err error) error {
	if l.policy == FailClosed {
		return err
	}
	if l.errLog != nil {
		l.errLog.Printf("Audit write failed: %v", err)
	}
	return nil
}

// Close releases the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
