package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/communityhub/internal/app/console"
	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/app/system/fakeapi"
	"go.uber.org/zap"
)

// NewConsole starts a fake community API and returns a console wired to
// it. Nothing is loaded yet; call LoadConsole or RefreshAll.
func NewConsole(t *testing.T, opts fakeapi.Options) (*console.Console, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New(opts)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	client, err := communityapi.New(srv.URL+"/api", srv.Client(), zap.NewNop())
	if err != nil {
		t.Fatalf("communityapi.New: %v", err)
	}
	c := console.New(console.Config{
		API:     client,
		Log:     zap.NewNop(),
		Timeout: func() time.Duration { return 2 * time.Second },
	})
	t.Cleanup(c.Close)
	return c, fake
}

// LoadConsole is NewConsole followed by a successful RefreshAll.
func LoadConsole(t *testing.T, opts fakeapi.Options) (*console.Console, *fakeapi.Server) {
	t.Helper()
	c, fake := NewConsole(t, opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.RefreshAll(ctx); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	return c, fake
}
