package rest

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

func (that *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	return pkg.SessionID(w, r, that.sessionTTL)
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

func (that *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGame")

	game, err := that.game.GetOrCreateGame(r.Context(), that.sessionID(w, r))
	if err != nil {
		log.Error("failed to get game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v, err := view.Build(game, that.catalog)
	if err != nil {
		log.Error("failed to build view", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	if err = that.html.Render(&page, v); err != nil {
		log.Error("failed to render page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err = page.WriteTo(w); err != nil {
		log.Error("failed to write page", "error", err)
	}
}

func (that *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleBoardPNG")

	game, err := that.game.GetOrCreateGame(r.Context(), that.sessionID(w, r))
	if err != nil {
		log.Error("failed to get game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v, err := view.Build(game, that.catalog)
	if err != nil {
		log.Error("failed to build view", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data, err := that.png.Render(r.Context(), v)
	if err != nil {
		log.Error("failed to render board", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err = w.Write(data); err != nil {
		log.Error("failed to write board", "error", err)
	}
}

func (that *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handlePlay")

	cell, err := parseCell(r.PathValue("cell"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err = that.game.Play(r.Context(), that.sessionID(w, r), cell); err != nil {
		log.Error("failed to play", "cell", cell, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleJump")

	move, err := strconv.Atoi(r.PathValue("move"))
	if err != nil {
		http.Error(w, "invalid move", http.StatusBadRequest)
		return
	}

	_, err = that.game.JumpTo(r.Context(), that.sessionID(w, r), move)
	if errors.Is(err, apperror.ErrMoveOutOfRange) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Error("failed to jump", "move", move, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if _, err := that.game.Restart(r.Context(), that.sessionID(w, r)); err != nil {
		that.logger.Error("failed to restart", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// parseCell converts a path value into a board index.
func parseCell(raw string) (int, error) {
	cell, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidCell, raw)
	}

	if err = entity.ValidateCell(cell); err != nil {
		return 0, err
	}

	return cell, nil
}
