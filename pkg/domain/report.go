package domain

import "time"

// Report is the harness-level record of a finished run.
// It is what ReportStore adapters persist; the navigator itself keeps no state
// beyond a single run.
type Report struct {
	ID         string      `json:"id"`
	Session    string      `json:"session,omitempty"`
	Root       string      `json:"root"`
	Kind       OutcomeKind `json:"kind,omitempty"`
	Path       Path        `json:"path,omitempty"`
	Item       *ItemRef    `json:"item,omitempty"`
	DeadEnds   []Path      `json:"dead_ends,omitempty"`
	Stats      Stats       `json:"stats"`
	Limits     Limits      `json:"limits"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// Failed reports whether the run ended with a fault rather than an outcome.
func (r *Report) Failed() bool {
	return r.Error != ""
}

// Duration returns the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewReport builds a report from a run result. err, when set, takes
// precedence over the outcome.
func NewReport(id, root string, outcome Outcome, err error, started, finished time.Time) *Report {
	r := &Report{
		ID:         id,
		Root:       root,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Kind = outcome.Kind
	r.Path = outcome.Path.Clone()
	r.Item = outcome.Item
	r.DeadEnds = outcome.DeadEnds
	r.Stats = outcome.Stats
	return r
}
