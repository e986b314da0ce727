package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"customer-notes/internal/api/rest"
	"customer-notes/internal/config"
	"customer-notes/internal/logger"
	"customer-notes/internal/repository"
	"customer-notes/internal/repository/memory"
	"customer-notes/internal/repository/sqldb"
	notesService "customer-notes/internal/service/notes"
	"customer-notes/internal/service/qrcode"
)

// Server представляет HTTP сервер приложения
type Server struct {
	HTTPServer *http.Server
	HTTPAddr   string
	Listener   net.Listener

	// Конфигурация
	Config *config.Config

	log  zerolog.Logger
	exec *sqldb.Executor // nil для драйвера memory
}

// NewServer создает сервер и занимает порт
func NewServer(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	httpAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortHTTP)

	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", httpAddr, err)
	}

	log.Info().
		Int("port_http", cfg.Server.PortHTTP).
		Str("driver", cfg.Database.Driver).
		Bool("swagger", cfg.Swagger.Enabled).
		Msg("config loaded")

	return &Server{
		HTTPAddr: listener.Addr().String(),
		Listener: listener,
		Config:   cfg,
		log:      log,
	}, nil
}

// Initialize инициализирует компоненты сервера (Repository → Service → Handler)
func (s *Server) Initialize(ctx context.Context) error {
	noteRepo, err := s.openRepository(ctx)
	if err != nil {
		return err
	}

	noteSvc := notesService.NewNoteService(
		noteRepo,
		qrcode.NewEncoder(s.Config.Lookup.QRSize),
		notesService.WithLogger(logger.Component(s.log, "service")),
		notesService.WithLookupBaseURL(s.Config.Lookup.BaseURL),
	)
	s.log.Info().Msg("initialized note service")

	noteHandler := rest.NewHandler(noteSvc, logger.Component(s.log, "rest"))
	router := rest.NewRouter(noteHandler, s.Config, logger.Component(s.log, "http"))

	s.HTTPServer = &http.Server{
		Handler:           router,
		ReadTimeout:       seconds(s.Config.Server.HTTPReadTimeout),
		WriteTimeout:      seconds(s.Config.Server.HTTPWriteTimeout),
		IdleTimeout:       seconds(s.Config.Server.HTTPIdleTimeout),
		ReadHeaderTimeout: seconds(s.Config.Server.HTTPReadHeaderTimeout),
	}
	return nil
}

func (s *Server) openRepository(ctx context.Context) (repository.NoteRepository, error) {
	dbCfg := s.Config.Database
	if dbCfg.Driver == config.DriverMemory {
		s.log.Info().Msg("initialized in-memory repository (map-based)")
		return memory.NewRepository(), nil
	}

	dbLog := logger.Component(s.log, "sqldb")
	exec, err := sqldb.Open(ctx, dbCfg, dbLog)
	if err != nil {
		return nil, err
	}

	if dbCfg.AutoMigrate {
		applied, err := sqldb.Migrate(ctx, exec, dbCfg.Table)
		if err != nil {
			exec.Close()
			return nil, err
		}
		dbLog.Info().Int("applied", applied).Msg("migrations done")
	}

	repo, err := sqldb.NewRepository(exec, dbCfg.Table)
	if err != nil {
		exec.Close()
		return nil, err
	}

	s.exec = exec
	dbLog.Info().Str("dsn", sqldb.RedactDSN(dbCfg.DSN)).Str("table", dbCfg.Table).Msg("initialized sqlite repository")
	return repo, nil
}

// Start запускает HTTP сервер в горутине
// Возвращает канал ошибок для отслеживания ошибок сервера
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", s.HTTPAddr).Msg("HTTP server listening")
		if err := s.HTTPServer.Serve(s.Listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера и закрывает базу
func (s *Server) Shutdown() error {
	s.log.Info().Msg("starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), seconds(s.Config.Server.GracefulShutdownTimeout))
	defer cancel()

	var shutdownErr error
	if s.HTTPServer != nil {
		if err := s.HTTPServer.Shutdown(ctx); err != nil {
			s.log.Warn().Err(err).Msg("graceful shutdown timeout, forcing stop...")
			s.HTTPServer.Close()
			shutdownErr = err
		} else {
			s.log.Info().Msg("HTTP server stopped gracefully")
		}
	} else {
		s.Listener.Close()
	}

	if s.exec != nil {
		if err := s.exec.Close(); err != nil {
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}
	return shutdownErr
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
