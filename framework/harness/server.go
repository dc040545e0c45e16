package harness

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/helpers"
)

const httpListenerTimeout = time.Second * 10

// Serve starts the harness's HTTP listener on the given port (0 picks a free one), which mock
// endpoints are served from, and waits until it is accepting requests. It returns the port.
// The listener stops when ctx is done.
//
// If no external base URL was configured with WithMockEndpoints, endpoint URLs use
// http://localhost and the listener's port.
func (h *Harness) Serve(ctx context.Context, port int) (int, error) {
	actual, err := startServer(ctx, port, http.HandlerFunc(h.mockEndpoints.serveHTTP), h.logger)
	if err != nil {
		return 0, err
	}
	h.mockEndpoints.lock.Lock()
	if h.mockEndpoints.externalBaseURL == "" {
		h.mockEndpoints.externalBaseURL = fmt.Sprintf("http://localhost:%d", actual)
	}
	h.mockEndpoints.lock.Unlock()
	return actual, nil
}

func startServer(ctx context.Context, port int, handler http.Handler, logger *zap.Logger) (int, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("could not listen on port %d: %w", port, err)
	}
	actual := listener.Addr().(*net.TCPAddr).Port
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead && r.URL.Path == "/" {
				w.WriteHeader(http.StatusOK) // we use this to test whether our own listener is active yet
				return
			}
			handler.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second, // arbitrary but non-infinite timeout to avoid Slowloris Attack
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("harness listener stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	// Wait till the server is definitely listening for requests before we run any tests
	selfURL := fmt.Sprintf("http://localhost:%d", actual)
	_, ok, err := helpers.PollUntil(ctx, httpListenerTimeout, 10*time.Millisecond, func() (struct{}, bool, error) {
		_, _, err := doRequest(ctx, http.MethodHead, selfURL)
		return struct{}{}, err == nil, err
	})
	if !ok {
		_ = server.Close()
		return 0, fmt.Errorf("could not detect own listener at %s: %v", selfURL, err)
	}
	logger.Info("harness listener started", zap.Int("port", actual))
	return actual, nil
}
