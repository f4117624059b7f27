package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/rest"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	gameRepo, closeRepo, err := newGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeRepo(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	handler, err := NewHandler(logger, conf, gameRepo)
	if err != nil {
		return err
	}

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)
	if err = rest.Start(ctx, conf.HTTPPort, handler); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// NewHandler builds the HTTP handler serving the game page, its assets and the websocket endpoint.
func NewHandler(logger *slog.Logger, conf *config.Config, gameRepo repository.GameRepository) (http.Handler, error) {
	catalog, err := msgcat.New(conf.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("could not load messages: %w", err)
	}

	htmlRenderer, err := view.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("could not load templates: %w", err)
	}

	gameManager := usecase.NewGameManager(logger, gameRepo)

	restServer := rest.New(logger, rest.Options{
		Game:       gameManager,
		Catalog:    catalog,
		HTML:       htmlRenderer,
		PNG:        view.NewPNGRenderer(conf.CellSize),
		Static:     view.StaticFS(),
		SessionTTL: conf.SessionTTL,
	})
	wsServer := websocket.New(logger, gameManager, catalog, conf.SessionTTL)

	return restServer.Handler(map[string]http.Handler{
		"GET /ws": wsServer,
	}), nil
}

func newGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, func() error, error) {
	if conf.Storage != config.StorageRedis {
		return repository.NewMemoryGameRepository(conf.SessionTTL), func() error { return nil }, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewGameRepository(redisStorage, conf.SessionTTL), redisStorage.Close, nil
}
