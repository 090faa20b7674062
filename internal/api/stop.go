package api

import (
	"encoding/json"
	"errors"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
)

func (s *Api) stopHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputRunId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_STOP, nil, err
	}
	if m.RunId == "" {
		return common.UPDATE_STOP, nil, errors.New("run_id is required")
	}
	resp, err := s.StopRun(m.RunId)
	if err != nil {
		return common.UPDATE_STOP, nil, err
	}
	return common.UPDATE_STOP, resp, nil
}
