package api

import (
	"encoding/json"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
)

func (s *Api) flushHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.FlushParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_FLUSH, nil, err
	}
	if m.RunId != "" {
		return common.UPDATE_FLUSH, nil, s.RemoveRun(m.RunId)
	}
	// Journal rows first, a leftover record can still be flushed again.
	if s.journal != nil {
		for _, run := range s.manager.GetFinishedRuns() {
			if err := s.journal.DeleteRun(run.Id); err != nil {
				return common.UPDATE_FLUSH, nil, err
			}
		}
	}
	return common.UPDATE_FLUSH, nil, s.manager.Flush()
}
