package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewClient_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(Config{Host: mr.Host(), Port: mr.Port(), PoolSize: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Ping(context.Background()))
}

func TestClient_PingNamesAddressOnFailure(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(Config{Host: mr.Host(), Port: mr.Port(), ClientName: "user-directory"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	addr := mr.Addr()
	mr.Close()
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := NewClient(Config{Host: host, Port: port}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestConfigAddr(t *testing.T) {
	assert.Equal(t, "localhost:6379", Config{Host: "localhost", Port: "6379"}.Addr())
}
