package api

import (
	"encoding/json"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/server"
)

func (s *Api) versionHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_VERSION, &common.VersionResponse{
		Version:   s.version,
		Commit:    s.commit,
		BuildType: s.buildType,
	}, nil
}
