package api

import (
	"encoding/json"
	"errors"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
)

func (s *Api) attachHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputRunId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_ATTACH, nil, err
	}
	if m.RunId == "" {
		return common.UPDATE_ATTACH, nil, errors.New("run_id is required")
	}
	run := s.manager.GetRun(m.RunId)
	if run == nil {
		return common.UPDATE_ATTACH, nil, errors.New("run not found")
	}
	if !run.IsActive() {
		return common.UPDATE_ATTACH, nil, errors.New("run not running")
	}
	pool.AddConnection(m.RunId, sconn)
	return common.UPDATE_ATTACH, runResponse(run), nil
}
