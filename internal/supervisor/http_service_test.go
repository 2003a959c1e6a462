// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockServer implements HTTPServer with scripted behavior.
type mockServer struct {
	listenErr  error
	shutdownCh chan struct{}
	shutdown   bool
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.shutdownCh
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.shutdown = true
	close(m.shutdownCh)
	return nil
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	srv := &mockServer{shutdownCh: make(chan struct{})}
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop after cancel")
	}
	if !srv.shutdown {
		t.Error("expected Shutdown to be called")
	}
}

func TestHTTPServiceStartupFailure(t *testing.T) {
	t.Parallel()

	srv := &mockServer{listenErr: errors.New("port in use"), shutdownCh: make(chan struct{})}
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("expected startup failure to propagate")
	}
}
