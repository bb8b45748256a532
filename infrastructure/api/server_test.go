package api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

// A clean close needs a live deadline context; Start then returns nil.
func TestServerGracefulShutdown(t *testing.T) {
	server := NewServer(freeAddr(t), nil)

	done := make(chan error, 1)
	go func() { done <- server.Start() }()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", server.Addr(), 50*time.Millisecond)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-done)
}

func TestServerShutdownBeforeStart(t *testing.T) {
	server := NewServer(freeAddr(t), nil)
	assert.NoError(t, server.Shutdown(context.Background()))
}
