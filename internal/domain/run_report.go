package domain

import "time"

// ResourceOutcome records what happened to one resource during a run
type ResourceOutcome struct {
	URL      string
	Kind     ResourceKind
	FileName string
	Bytes    int64
	Err      error
}

// Succeeded returns true if the resource was written to disk
func (o ResourceOutcome) Succeeded() bool {
	return o.Err == nil
}

// RunReport summarizes one end-to-end run
type RunReport struct {
	PageURL    string
	StartedAt  time.Time
	FinishedAt time.Time

	// Page is nil when extraction failed
	Page *Page

	Resources []ResourceOutcome

	IndexSaved bool
	Err        error
}

// Downloaded returns the number of resources written to disk
func (r *RunReport) Downloaded() int {
	n := 0
	for _, o := range r.Resources {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns the number of resources that could not be saved
func (r *RunReport) Failed() int {
	return len(r.Resources) - r.Downloaded()
}

// TotalBytes returns the bytes written for all downloaded resources
func (r *RunReport) TotalBytes() int64 {
	var total int64
	for _, o := range r.Resources {
		if o.Succeeded() {
			total += o.Bytes
		}
	}
	return total
}

// Duration returns how long the run took
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
