package api

import (
	"encoding/json"
	"errors"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
)

func (s *Api) eventsHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.EventsParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_EVENTS, nil, err
	}
	if m.RunId == "" {
		return common.UPDATE_EVENTS, nil, errors.New("run_id is required")
	}
	if s.manager.GetRun(m.RunId) == nil {
		return common.UPDATE_EVENTS, nil, errors.New("run not found")
	}
	if s.journal == nil {
		return common.UPDATE_EVENTS, nil, errors.New("journal not available")
	}
	entries, err := s.journal.Events(m.RunId, m.Limit)
	if err != nil {
		return common.UPDATE_EVENTS, nil, err
	}
	events := make([]common.EventRecord, len(entries))
	for i, e := range entries {
		events[i] = common.EventRecord{
			Id:         e.Id,
			Event:      e.Event,
			RecordedAt: e.RecordedAt,
		}
	}
	return common.UPDATE_EVENTS, &common.EventsResponse{
		RunId:  m.RunId,
		Events: events,
	}, nil
}
