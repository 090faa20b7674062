package api

import (
	"encoding/json"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
	"github.com/agroslabs/agros/pkg/agrolib"
)

func (s *Api) runHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.RunParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_RUN, nil, err
	}
	run, err := s.startRun(&m, sconn)
	if err != nil {
		return common.UPDATE_RUN, nil, err
	}
	return common.UPDATE_RUN, runResponse(run), nil
}

func runResponse(run *agrolib.Run) *common.RunResponse {
	resp := &common.RunResponse{
		RunId:     run.Id,
		Name:      run.Name,
		Document:  run.Document,
		Status:    run.Status,
		StartDate: run.StartDate,
		EndDate:   run.EndDate,
		TotalDays: run.TotalDays,
		Campaigns: run.Campaigns,
	}
	if run.Status == agrolib.StatusScheduled {
		resp.Scheduled = true
		resp.TriggerAt = run.StartAt
		resp.CronExpr = run.CronExpr
	}
	return resp
}
