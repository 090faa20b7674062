package agrocli

import (
	"encoding/json"
	"time"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/pkg/agrolib"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// RunOpts carries the optional knobs of a run request.
type RunOpts struct {
	Name      string
	Model     agrolib.ModelSpec
	StartAt   time.Time
	CronExpr  string
	NoJournal bool
}

// Run starts (or schedules) a simulation of the given document on the
// daemon. The document path is resolved on the daemon's filesystem.
func (c *Client) Run(document string, opts *RunOpts) (*common.RunResponse, error) {
	if opts == nil {
		opts = &RunOpts{}
	}
	return invoke[common.RunResponse](c, common.UPDATE_RUN, &common.RunParams{
		Document:  document,
		Name:      opts.Name,
		Model:     opts.Model,
		StartAt:   opts.StartAt,
		CronExpr:  opts.CronExpr,
		NoJournal: opts.NoJournal,
	})
}

// Validate checks a document without starting a run.
func (c *Client) Validate(document string) (*common.ValidateResponse, error) {
	return invoke[common.ValidateResponse](c, common.UPDATE_VALIDATE, &common.ValidateParams{
		Document: document,
	})
}

type ListOpts common.ListParams

// List returns the daemon's run records. A nil opts lists pending and
// executing runs only.
func (c *Client) List(opts *ListOpts) (*common.ListResponse, error) {
	if opts == nil {
		opts = &ListOpts{ShowFinished: false, ShowPending: true}
	}
	return invoke[common.ListResponse](c, common.UPDATE_LIST, (*common.ListParams)(opts))
}

// Events fetches journaled events of a run, newest first. A zero limit
// returns all of them.
func (c *Client) Events(runId string, limit int) (*common.EventsResponse, error) {
	return invoke[common.EventsResponse](c, common.UPDATE_EVENTS, &common.EventsParams{
		RunId: runId,
		Limit: limit,
	})
}

// Attach subscribes this connection to the ticking updates of an
// executing run. Call Listen afterwards to receive them.
func (c *Client) Attach(runId string) (*common.RunResponse, error) {
	return invoke[common.RunResponse](c, common.UPDATE_ATTACH, &common.InputRunId{
		RunId: runId,
	})
}

// Stop cancels an executing or scheduled run.
func (c *Client) Stop(runId string) (*common.StopResponse, error) {
	return invoke[common.StopResponse](c, common.UPDATE_STOP, &common.InputRunId{
		RunId: runId,
	})
}

// Flush removes finished run records. An empty runId flushes all of
// them.
func (c *Client) Flush(runId string) (bool, error) {
	_, err := c.invoke(common.UPDATE_FLUSH, &common.FlushParams{RunId: runId})
	return err == nil, err
}

// GetDaemonVersion reports the daemon's build information.
func (c *Client) GetDaemonVersion() (*common.VersionResponse, error) {
	return invoke[common.VersionResponse](c, common.UPDATE_VERSION, nil)
}
