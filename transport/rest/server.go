package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error)
	Play(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, move int) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)
}

type htmlRenderer interface {
	Render(w io.Writer, v *view.View) error
}

type pngRenderer interface {
	Render(ctx context.Context, v *view.View) ([]byte, error)
}

type Server struct {
	logger *slog.Logger

	game    gameUseCase
	catalog tictactoe.Catalog
	html    htmlRenderer
	png     pngRenderer
	static  fs.FS

	sessionTTL time.Duration
}

// Options holds the collaborators of the REST server.
type Options struct {
	Game       gameUseCase
	Catalog    tictactoe.Catalog
	HTML       htmlRenderer
	PNG        pngRenderer
	Static     fs.FS
	SessionTTL time.Duration
}

func New(logger *slog.Logger, opts Options) *Server {
	return &Server{
		logger: logger.With("component", "rest"),

		game:    opts.Game,
		catalog: opts.Catalog,
		html:    opts.HTML,
		png:     opts.PNG,
		static:  opts.Static,

		sessionTTL: opts.SessionTTL,
	}
}

// Handler wires the game routes. extra mounts additional handlers, e.g. the websocket endpoint.
func (that *Server) Handler(extra map[string]http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", that.handlePing)
	mux.HandleFunc("GET /{$}", that.handleGame)
	mux.HandleFunc("GET /board.png", that.handleBoardPNG)
	mux.HandleFunc("POST /play/{cell}", that.handlePlay)
	mux.HandleFunc("POST /jump/{move}", that.handleJump)
	mux.HandleFunc("POST /restart", that.handleRestart)
	mux.Handle("GET /static/", http.StripPrefix("/static/", NewStaticHandler(that.static)))

	for pattern, handler := range extra {
		mux.Handle(pattern, handler)
	}

	return mux
}

// Start serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	return nil
}
