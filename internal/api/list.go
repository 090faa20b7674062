package api

import (
	"encoding/json"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
	"github.com/agroslabs/agros/pkg/agrolib"
)

func (s *Api) listHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ListParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_LIST, nil, err
	}
	var runs []*agrolib.Run
	switch {
	case m.ShowFinished && m.ShowPending:
		runs = s.manager.GetRuns()
	case m.ShowFinished:
		runs = s.manager.GetFinishedRuns()
	default:
		runs = s.manager.GetPendingRuns()
	}
	return common.UPDATE_LIST, &common.ListResponse{
		Runs: runs,
	}, nil
}
