package server

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/journal"
	"github.com/agroslabs/agros/pkg/agrolib"
)

// Custom JSON-RPC error codes for run operations.
const (
	codeRunNotFound   = jrpc2.Code(-32001)
	codeRunNotActive  = jrpc2.Code(-32002)
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string // Daemon version
	Commit    string // Git commit
	BuildType string // Build type
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	secret    string
	listenAll bool
	version   string
	commit    string
	buildType string
	manager   *agrolib.Manager
	journal   *journal.Journal
	pool      *Pool
	notifier  *RPCNotifier
	ctl       Controller
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// StartParams is the input for run.start.
type StartParams struct {
	Document string            `json:"document"`
	Name     string            `json:"name,omitempty"`
	Model    agrolib.ModelSpec `json:"model,omitempty"`
	CronExpr string            `json:"cronExpr,omitempty"`
}

// StartResult is the response for run.start.
type StartResult struct {
	RunId  string `json:"runId"`
	Status string `json:"status"`
}

// RunIdParam is a common input with just a run id.
type RunIdParam struct {
	RunId string `json:"runId"`
}

// StatusResult is the response for run.status.
type StatusResult struct {
	RunId      string `json:"runId"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Ticks      int    `json:"ticks"`
	TotalDays  int    `json:"totalDays"`
	Percentage int    `json:"percentage"`
	CurrentDay string `json:"currentDay,omitempty"`
	Terminated bool   `json:"terminated,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RPCListParams is the input for run.list.
type RPCListParams struct {
	Status string `json:"status,omitempty"` // "pending", "finished", "all" (default)
}

// ListItem is a single entry in the run.list response.
type ListItem struct {
	RunId     string `json:"runId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Ticks     int    `json:"ticks"`
	TotalDays int    `json:"totalDays"`
}

// ListResult is the response for run.list.
type ListResult struct {
	Runs []*ListItem `json:"runs"`
}

// RPCEventsParams is the input for run.events.
type RPCEventsParams struct {
	RunId string `json:"runId"`
	Limit int    `json:"limit,omitempty"`
}

// EventItem is a single entry in the run.events response.
type EventItem struct {
	Id     int64          `json:"id"`
	Signal string         `json:"signal"`
	Day    string         `json:"day"`
	Params map[string]any `json:"params,omitempty"`
}

// EventsResult is the response for run.events.
type EventsResult struct {
	RunId  string       `json:"runId"`
	Events []*EventItem `json:"events"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, m *agrolib.Manager, jrnl *journal.Journal, pool *Pool, notifier *RPCNotifier, ctl Controller) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		listenAll: cfg.ListenAll,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		manager:   m,
		journal:   jrnl,
		pool:      pool,
		notifier:  notifier,
		ctl:       ctl,
	}

	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"run.start":         handler.New(rs.runStart),
		"run.stop":          handler.New(rs.runStop),
		"run.remove":        handler.New(rs.runRemove),
		"run.status":        handler.New(rs.runStatus),
		"run.list":          handler.New(rs.runList),
		"run.events":        handler.New(rs.runEvents),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

// runStart creates a run from a document and launches or schedules it.
func (rs *RPCServer) runStart(_ context.Context, p *StartParams) (*StartResult, error) {
	if p.Document == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: document"}
	}
	if rs.ctl == nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "run control unavailable"}
	}
	run, err := rs.ctl.StartRun(&common.RunParams{
		Document: p.Document,
		Name:     p.Name,
		Model:    p.Model,
		CronExpr: p.CronExpr,
	})
	if err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	return &StartResult{RunId: run.Id, Status: string(run.Status)}, nil
}

// runStop stops an executing run or cancels a scheduled one.
func (rs *RPCServer) runStop(_ context.Context, p *RunIdParam) (*EmptyResult, error) {
	run := rs.manager.GetRun(p.RunId)
	if run == nil {
		return nil, &jrpc2.Error{Code: codeRunNotFound, Message: "run not found"}
	}
	if rs.ctl == nil {
		return nil, &jrpc2.Error{Code: codeRunNotActive, Message: "run control unavailable"}
	}
	if _, err := rs.ctl.StopRun(p.RunId); err != nil {
		return nil, &jrpc2.Error{Code: codeRunNotActive, Message: err.Error()}
	}
	return &EmptyResult{}, nil
}

// runRemove flushes one finished run and its journal.
func (rs *RPCServer) runRemove(_ context.Context, p *RunIdParam) (*EmptyResult, error) {
	if rs.ctl == nil {
		return nil, &jrpc2.Error{Code: codeRunNotActive, Message: "run control unavailable"}
	}
	if err := rs.ctl.RemoveRun(p.RunId); err != nil {
		if err == agrolib.ErrFlushRunNotFound {
			return nil, &jrpc2.Error{Code: codeRunNotFound, Message: "run not found"}
		}
		return nil, &jrpc2.Error{Code: codeRunNotActive, Message: err.Error()}
	}
	return &EmptyResult{}, nil
}

// runStatus returns the status of a run.
func (rs *RPCServer) runStatus(_ context.Context, p *RunIdParam) (*StatusResult, error) {
	run := rs.manager.GetRun(p.RunId)
	if run == nil {
		return nil, &jrpc2.Error{Code: codeRunNotFound, Message: "run not found"}
	}
	res := &StatusResult{
		RunId:      run.Id,
		Name:       run.Name,
		Status:     string(run.Status),
		Ticks:      run.Ticks,
		TotalDays:  run.TotalDays,
		Percentage: run.Percentage(),
		Terminated: run.Terminated,
		Error:      run.Error,
	}
	if !run.CurrentDay.IsZero() {
		res.CurrentDay = run.CurrentDay.Format(agrolib.DayLayout)
	}
	return res, nil
}

// runList returns runs, optionally filtered by pending or finished
// status.
func (rs *RPCServer) runList(_ context.Context, p *RPCListParams) (*ListResult, error) {
	var runs []*agrolib.Run
	switch p.Status {
	case "pending":
		runs = rs.manager.GetPendingRuns()
	case "finished":
		runs = rs.manager.GetFinishedRuns()
	default:
		runs = rs.manager.GetRuns()
	}

	items := make([]*ListItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, &ListItem{
			RunId:     run.Id,
			Name:      run.Name,
			Status:    string(run.Status),
			Ticks:     run.Ticks,
			TotalDays: run.TotalDays,
		})
	}
	return &ListResult{Runs: items}, nil
}

// runEvents returns the journaled events of a run.
func (rs *RPCServer) runEvents(_ context.Context, p *RPCEventsParams) (*EventsResult, error) {
	if rs.manager.GetRun(p.RunId) == nil {
		return nil, &jrpc2.Error{Code: codeRunNotFound, Message: "run not found"}
	}
	entries, err := rs.journal.Events(p.RunId, p.Limit)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	events := make([]*EventItem, 0, len(entries))
	for _, e := range entries {
		events = append(events, &EventItem{
			Id:     e.Id,
			Signal: string(e.Event.Signal),
			Day:    e.Event.Day.Format(agrolib.DayLayout),
			Params: e.Event.Params,
		})
	}
	return &EventsResult{RunId: p.RunId, Events: events}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
