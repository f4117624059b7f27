package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

var ErrUnknownAction = errors.New("unknown action")

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error)
	Play(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, move int) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, sessionID string, payload *RequestPayload) (*entity.Game, error)

type Server struct {
	logger     *slog.Logger
	game       gameUseCase
	catalog    tictactoe.Catalog
	sessionTTL time.Duration

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gameUseCase, catalog tictactoe.Catalog, sessionTTL time.Duration) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		game:       game,
		catalog:    catalog,
		sessionTTL: sessionTTL,
	}

	server.handlers = map[string]handlerFunc{
		actionState:   server.handleState,
		actionTurn:    server.handleTurn,
		actionJump:    server.handleJump,
		actionRestart: server.handleRestart,
	}

	return server
}

// ServeHTTP upgrades the request and serves messages until the client goes away.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	sessionID := pkg.SessionID(w, r, that.sessionTTL)

	// the server timeouts are meant for plain requests, not for long lived connections
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow() //nolint: errcheck // closing an already closed connection is fine

	log.Info("WebSocket connection established", "gameID", sessionID)

	if err = that.handleMessages(r.Context(), conn, sessionID); err != nil {
		log.Error("error handling messages", "error", err)
		return
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// handleMessages answers every request with the recomputed view of the game.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	for {
		var message Message
		if err := wsjson.Read(ctx, conn, &message); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		response := that.process(ctx, sessionID, &message)

		if err := wsjson.Write(ctx, conn, response); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}
