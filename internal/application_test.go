package application

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:   "debug",
		HTTPPort:   "0",
		Storage:    config.StorageMemory,
		SessionTTL: time.Hour,
		CellSize:   32,
	}
}

func TestNewHandler(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	handler, err := NewHandler(logger, testConfig(), repository.NewMemoryGameRepository(time.Hour))
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	t.Run("A click over HTTP is visible over the websocket", func(t *testing.T) {
		// Given: a move made through the page
		resp, err := client.Post(server.URL+"/play/4", "", nil)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// When: the same session asks for the state over the websocket
		conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws", &websocket.DialOptions{
			HTTPClient: client,
		})
		require.NoError(t, err)
		defer conn.CloseNow() //nolint: errcheck

		require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"action": "game:state"}))

		var response struct {
			Payload struct {
				View struct {
					Status string `json:"status"`
					Cells  []struct {
						Marker entity.Marker `json:"marker"`
					} `json:"cells"`
				} `json:"view"`
			} `json:"payload"`
		}
		require.NoError(t, wsjson.Read(ctx, conn, &response))

		// Then: marker A sits in the center and B is to move
		require.Len(t, response.Payload.View.Cells, entity.BoardSize)
		assert.Equal(t, entity.MarkerA, response.Payload.View.Cells[4].Marker)
		assert.Equal(t, "Duck Season!", response.Payload.View.Status)
	})

	t.Run("Ping", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/ping")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestNewHandler_BadMessagesDir(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	conf := testConfig()
	conf.MessagesDir = t.TempDir() + "/missing"

	_, err := NewHandler(logger, conf, repository.NewMemoryGameRepository(time.Hour))

	require.Error(t, err)
}

func TestNewGameRepository(t *testing.T) {
	t.Run("Memory storage needs no connection", func(t *testing.T) {
		repo, closeRepo, err := newGameRepository(context.Background(), testConfig())

		require.NoError(t, err)
		assert.NotNil(t, repo)
		assert.NoError(t, closeRepo())
	})

	t.Run("Redis storage without address", func(t *testing.T) {
		conf := testConfig()
		conf.Storage = config.StorageRedis

		_, _, err := newGameRepository(context.Background(), conf)

		require.ErrorIs(t, err, ErrAddrNotFound)
	})
}
