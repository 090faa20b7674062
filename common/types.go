package common

import (
	"time"

	"github.com/agroslabs/agros/pkg/agrolib"
)

// InputRunId is the parameter shape of every method that addresses one
// run.
type InputRunId struct {
	RunId string `json:"run_id"`
}

// RunParams starts a new simulation run.
type RunParams struct {
	// Document is the path of the agromanagement document, resolved on
	// the daemon's filesystem.
	Document string `json:"document"`
	// Name labels the run; defaults to the document's base name.
	Name string `json:"name,omitempty"`
	// Model selects the state model stepped before each tick.
	Model agrolib.ModelSpec `json:"model"`
	// StartAt delays the run until the given wall-clock time.
	StartAt time.Time `json:"start_at,omitempty"`
	// CronExpr re-runs the simulation on a 5-field cron schedule.
	CronExpr string `json:"cron_expr,omitempty"`
	// NoJournal disables event journaling for this run.
	NoJournal bool `json:"no_journal,omitempty"`
}

// RunResponse is the daemon's answer to run and attach requests.
type RunResponse struct {
	RunId     string            `json:"run_id"`
	Name      string            `json:"name"`
	Document  string            `json:"document"`
	Status    agrolib.RunStatus `json:"status"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	TotalDays int               `json:"total_days"`
	Campaigns int               `json:"campaigns"`
	Scheduled bool              `json:"scheduled,omitempty"`
	TriggerAt time.Time         `json:"trigger_at,omitempty"`
	CronExpr  string            `json:"cron_expr,omitempty"`
}

// TickingResponse is pushed to attached connections while a run ticks.
type TickingResponse struct {
	RunId  string    `json:"run_id"`
	Action RunAction `json:"action"`
	// Day is the simulated day the update refers to.
	Day time.Time `json:"day,omitempty"`
	// Ticks and TotalDays report progress.
	Ticks     int `json:"ticks,omitempty"`
	TotalDays int `json:"total_days,omitempty"`
	// Event carries the fired event for signal actions.
	Event *agrolib.Event `json:"event,omitempty"`
	// Error holds the failure reason for failed actions.
	Error string `json:"error,omitempty"`
}

// ValidateParams checks a document without starting a run.
type ValidateParams struct {
	Document string `json:"document"`
}

// ValidateResponse reports the outcome of a validation request. Valid
// documents also report their simulated window.
type ValidateResponse struct {
	Valid     bool      `json:"valid"`
	Error     string    `json:"error,omitempty"`
	Campaigns int       `json:"campaigns,omitempty"`
	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`
	TotalDays int       `json:"total_days,omitempty"`
}

// ListParams filters the run listing.
type ListParams struct {
	ShowFinished bool `json:"show_finished,omitempty"`
	ShowPending  bool `json:"show_pending,omitempty"`
}

// ListResponse carries the run records matching a list request.
type ListResponse struct {
	Runs []*agrolib.Run `json:"runs"`
}

// EventsParams queries the journal of one run.
type EventsParams struct {
	RunId string `json:"run_id"`
	// Limit caps the number of returned events; zero means all.
	Limit int `json:"limit,omitempty"`
}

// EventRecord is one journaled event on the wire.
type EventRecord struct {
	Id         int64         `json:"id"`
	Event      agrolib.Event `json:"event"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// EventsResponse answers an events request.
type EventsResponse struct {
	RunId  string        `json:"run_id"`
	Events []EventRecord `json:"events"`
}

// StopResponse answers a stop request. Message is set when a schedule
// was cancelled instead of an executing run.
type StopResponse struct {
	RunId   string            `json:"run_id"`
	Status  agrolib.RunStatus `json:"status"`
	Message string            `json:"message,omitempty"`
}

// FlushParams clears finished runs. An empty RunId flushes all of them.
type FlushParams struct {
	RunId string `json:"run_id,omitempty"`
}

// VersionResponse reports daemon build information.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"build_type,omitempty"`
}
