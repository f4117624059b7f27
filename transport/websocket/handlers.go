package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

var errMissingField = errors.New("missing field")

func (that *Server) process(ctx context.Context, sessionID string, message *Message) *Response {
	log := that.logger.With("method", "process", "action", message.Action)

	response := &Response{Action: message.Action}

	handler, ok := that.handlers[message.Action]
	if !ok {
		response.Payload.Error = fmt.Sprintf("%s: %q", ErrUnknownAction, message.Action)
		return response
	}

	var payload RequestPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			response.Payload.Error = "invalid payload"
			return response
		}
	}

	game, err := handler(ctx, sessionID, &payload)
	if err != nil {
		if !isClientError(err) {
			log.Error("failed to process message", "error", err)
			response.Payload.Error = "internal error"
			return response
		}

		response.Payload.Error = err.Error()
		return response
	}

	v, err := view.Build(game, that.catalog)
	if err != nil {
		log.Error("failed to build view", "error", err)
		response.Payload.Error = "internal error"
		return response
	}

	response.Payload.View = v

	return response
}

func isClientError(err error) bool {
	return errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrMoveOutOfRange) ||
		errors.Is(err, errMissingField)
}

func (that *Server) handleState(ctx context.Context, sessionID string, _ *RequestPayload) (*entity.Game, error) {
	return that.game.GetOrCreateGame(ctx, sessionID)
}

func (that *Server) handleTurn(ctx context.Context, sessionID string, payload *RequestPayload) (*entity.Game, error) {
	if payload.Cell == nil {
		return nil, fmt.Errorf("%w: cell", errMissingField)
	}

	if err := entity.ValidateCell(*payload.Cell); err != nil {
		return nil, err
	}

	return that.game.Play(ctx, sessionID, *payload.Cell)
}

func (that *Server) handleJump(ctx context.Context, sessionID string, payload *RequestPayload) (*entity.Game, error) {
	if payload.Move == nil {
		return nil, fmt.Errorf("%w: move", errMissingField)
	}

	return that.game.JumpTo(ctx, sessionID, *payload.Move)
}

func (that *Server) handleRestart(ctx context.Context, sessionID string, _ *RequestPayload) (*entity.Game, error) {
	return that.game.Restart(ctx, sessionID)
}
