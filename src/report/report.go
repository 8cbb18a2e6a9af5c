// Package report records what a single agent run did and writes it out as
// JSON next to the run log.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the outcome of a step or a run.
type Status string

// Status values.
const (
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusMissed  Status = "missed"
	StatusAborted Status = "aborted"
	StatusFailed  Status = "failed"
)

// Step is one action the agent took or tried to take.
type Step struct {
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	Text       string    `json:"text,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Screenshot string    `json:"screenshot,omitempty"`
	Time       time.Time `json:"time"`
}

// Summary counts steps by status.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Missed int `json:"missed"`
}

// Run is the report of one agent execution.
type Run struct {
	mu sync.Mutex

	ID        string     `json:"id"`
	URL       string     `json:"url"`
	Status    Status     `json:"status"`
	Error     string     `json:"error,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Summary   Summary    `json:"summary"`
	Steps     []Step     `json:"steps"`
}

// New starts a report for a run against url.
func New(url string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		URL:       url,
		Status:    StatusRunning,
		StartTime: time.Now(),
		Steps:     []Step{},
	}
}

// Add appends a step. A nil Run ignores the call.
func (r *Run) Add(step Step) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if step.Time.IsZero() {
		step.Time = time.Now()
	}
	r.Steps = append(r.Steps, step)
	r.Summary.Total++
	switch step.Status {
	case StatusPassed:
		r.Summary.Passed++
	case StatusMissed:
		r.Summary.Missed++
	}
}

// Finish stamps the end time and the final status derived from err.
func (r *Run) Finish(status Status, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = status
	if err != nil {
		r.Error = err.Error()
	}
}

// Write stores the report as <dir>/report_<id>.json and returns the path.
func (r *Run) Write(dir string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("report_%s.json", r.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
