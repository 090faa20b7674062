package api

import (
	"encoding/json"
	"errors"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
	"github.com/agroslabs/agros/pkg/agrolib"
)

// validateHandler checks a document without starting a run. Validation
// failures are a regular response with Valid false so clients can render
// the verdict; only malformed requests surface as errors.
func (s *Api) validateHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ValidateParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_VALIDATE, nil, err
	}
	if m.Document == "" {
		return common.UPDATE_VALIDATE, nil, errors.New("document is required")
	}
	doc, err := agrolib.LoadDocumentFile(s.fs, m.Document)
	if err != nil {
		return common.UPDATE_VALIDATE, &common.ValidateResponse{Error: err.Error()}, nil
	}
	eng, err := agrolib.NewEngine(doc, nil)
	if err != nil {
		return common.UPDATE_VALIDATE, &common.ValidateResponse{Error: err.Error()}, nil
	}
	return common.UPDATE_VALIDATE, &common.ValidateResponse{
		Valid:     true,
		Campaigns: len(doc.Campaigns),
		StartDate: eng.StartDate(),
		EndDate:   eng.EndDate(),
		TotalDays: eng.TotalDays(),
	}, nil
}
