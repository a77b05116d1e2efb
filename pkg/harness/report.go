package harness

import (
	"sync"
	"time"

	"github.com/gcstester/gcstester/pkg/jsonutil"
)

// Step records one harness operation for the run report.
type Step struct {
	Name      string    `json:"name"`
	OK        bool      `json:"ok"`
	Detail    string    `json:"detail,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms"`
	At        time.Time `json:"at"`
}

// Report is the machine-readable record of one run. Steps appear in
// execution order.
type Report struct {
	RunID      string    `json:"run_id"`
	Bucket     string    `json:"bucket"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Steps      []Step    `json:"steps"`
	Failures   int       `json:"failures"`

	mu sync.Mutex
}

func newReport(runID, bucket string) *Report {
	return &Report{
		RunID:     runID,
		Bucket:    bucket,
		StartedAt: time.Now(),
	}
}

func (r *Report) record(name string, ok bool, detail string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps = append(r.Steps, Step{
		Name:      name,
		OK:        ok,
		Detail:    detail,
		ElapsedMS: elapsed.Milliseconds(),
		At:        time.Now(),
	})
	if !ok {
		r.Failures++
	}
}

// Passed reports whether every recorded step succeeded.
func (r *Report) Passed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Failures == 0
}

// Write finalizes the report and writes it to path as indented JSON.
func (r *Report) Write(path string) error {
	r.mu.Lock()
	r.FinishedAt = time.Now()
	r.mu.Unlock()
	return jsonutil.WriteFile(path, r)
}
