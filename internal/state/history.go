package state

import (
	"fmt"
	"time"

	"github.com/jharlow/dispatch/pkg/models"
)

// RequestRecord is one row of execution history.
type RequestRecord struct {
	ID        string
	Text      string
	Override  string
	Succeeded bool
	Duration  time.Duration
	CreatedAt time.Time
}

// TaskRecord is one task's terminal outcome within a request.
type TaskRecord struct {
	ID      string
	Handler string
	Domain  string
	Status  models.TaskStatus
	Output  string
	Error   string
}

// SaveResult records a request and its tasks' terminal statuses in one
// transaction.
func (db *DB) SaveResult(req *models.Request, result *models.ExecutionResult) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	succeeded := 0
	if result.Succeeded() {
		succeeded = 1
	}

	_, err = tx.Exec(`
		INSERT INTO requests (id, text, handler_override, succeeded, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, req.ID, req.Text, req.Handler, succeeded, result.Duration.Milliseconds(), req.CreatedAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert request: %w", err)
	}

	for i, task := range result.Tasks {
		_, err = tx.Exec(`
			INSERT INTO request_tasks (id, request_id, handler, domain, status, output, error, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, task.ID, req.ID, task.Handler, task.Domain, string(task.Status), task.Output, task.Error, i)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert task %s: %w", task.ID, err)
		}
	}

	return tx.Commit()
}

// RecentRequests returns the most recent requests, newest first.
func (db *DB) RecentRequests(limit int) ([]RequestRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, text, handler_override, succeeded, duration_ms, created_at
		FROM requests
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var records []RequestRecord
	for rows.Next() {
		var r RequestRecord
		var succeeded int
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Text, &r.Override, &succeeded, &durationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		r.Succeeded = succeeded == 1
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// TasksForRequest returns a request's task outcomes in plan order.
func (db *DB) TasksForRequest(requestID string) ([]TaskRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, handler, domain, status, output, error
		FROM request_tasks
		WHERE request_id = ?
		ORDER BY position
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var t TaskRecord
		var status string
		if err := rows.Scan(&t.ID, &t.Handler, &t.Domain, &status, &t.Output, &t.Error); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Status = models.TaskStatus(status)
		records = append(records, t)
	}
	return records, rows.Err()
}
