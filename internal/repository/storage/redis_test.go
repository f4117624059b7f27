package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Connects to a running redis", func(t *testing.T) {
		// Given: an in-process redis server
		server := miniredis.RunT(t)

		// When: connecting
		client, err := New(context.Background(), server.Addr())

		// Then: the client is usable
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		require.NoError(t, client.Set(context.Background(), "key", "value", 0).Err())
	})

	t.Run("Fails when nothing listens", func(t *testing.T) {
		// Given: a server that is already gone
		server := miniredis.RunT(t)
		addr := server.Addr()
		server.Close()

		// When: connecting
		_, err := New(context.Background(), addr)

		// Then: the ping error is returned
		require.Error(t, err)
	})
}
