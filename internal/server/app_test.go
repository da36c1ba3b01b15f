package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/photovault/internal/server/config"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestApp_RunServesAndStops(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = freeAddr(t)
	c.GRPCAddr = freeAddr(t)

	app := NewApp(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", c.HTTPAddr))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestApp_StopsWhenOneServerFails(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = freeAddr(t)
	c.GRPCAddr = "127.0.0.1:99999"

	done := make(chan struct{})
	go func() {
		NewApp(c).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("a failing gRPC listener must stop the app")
	}
}
