package api

import (
	"log"

	"github.com/spf13/afero"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/journal"
	"github.com/agroslabs/agros/internal/scheduler"
	"github.com/agroslabs/agros/internal/server"
	"github.com/agroslabs/agros/pkg/agrolib"
	"github.com/agroslabs/agros/pkg/logger"
)

type Api struct {
	log       *log.Logger
	runLog    logger.Logger
	manager   *agrolib.Manager
	journal   *journal.Journal
	scheduler *scheduler.Scheduler
	pool      *server.Pool
	notifier  *server.RPCNotifier
	fs        afero.Fs
	version   string
	commit    string
	buildType string
}

func NewApi(l *log.Logger, m *agrolib.Manager, jrnl *journal.Journal, sched *scheduler.Scheduler, pool *server.Pool, notifier *server.RPCNotifier, version, commit, buildType string) (*Api, error) {
	return &Api{
		log:       l,
		runLog:    logger.NewStandardLogger(l),
		manager:   m,
		journal:   jrnl,
		scheduler: sched,
		pool:      pool,
		notifier:  notifier,
		fs:        afero.NewOsFs(),
		version:   version,
		commit:    commit,
		buildType: buildType,
	}, nil
}

func (s *Api) RegisterHandlers(server *server.Server) {
	// run lifecycle methods
	server.RegisterHandler(common.UPDATE_RUN, s.runHandler)
	server.RegisterHandler(common.UPDATE_VALIDATE, s.validateHandler)
	server.RegisterHandler(common.UPDATE_ATTACH, s.attachHandler)
	server.RegisterHandler(common.UPDATE_STOP, s.stopHandler)
	server.RegisterHandler(common.UPDATE_FLUSH, s.flushHandler)

	// inspection methods
	server.RegisterHandler(common.UPDATE_LIST, s.listHandler)
	server.RegisterHandler(common.UPDATE_EVENTS, s.eventsHandler)
	server.RegisterHandler(common.UPDATE_VERSION, s.versionHandler)
}

func (s *Api) Close() error {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.log.Printf("Error closing journal: %v", err)
		}
	}
	return s.manager.Close()
}
