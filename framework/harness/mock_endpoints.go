package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/helpers"
)

const endpointPathPrefix = "/endpoints/"

// Requests beyond this many that nobody has awaited are not recorded. The handler never blocks.
const recordedRequestsBufferSize = 50

type mockEndpointsManager struct {
	router          *mux.Router
	endpoints       map[string]*MockEndpoint
	lastEndpointID  int
	externalBaseURL string
	logger          *zap.Logger
	lock            sync.Mutex
}

// MockEndpoint is a set of pages served by the harness, such as a mock site for a self-check
// suite to drive a browser against.
type MockEndpoint struct {
	owner       *mockEndpointsManager
	id          string
	description string
	basePath    string
	handler     http.Handler
	requests    chan IncomingRequestInfo
	closed      context.Context
	close       context.CancelFunc
	logger      *zap.Logger
}

type MockEndpointOption = helpers.ConfigOption[MockEndpoint]

func MockEndpointDescription(description string) MockEndpointOption {
	return helpers.ConfigOptionFunc[MockEndpoint](func(e *MockEndpoint) error {
		e.description = description
		return nil
	})
}

// IncomingRequestInfo describes a request that the browser sent to a mock endpoint. URL.Path
// is relative to the endpoint's base URL.
type IncomingRequestInfo struct {
	Headers http.Header
	Method  string
	URL     url.URL
	Body    []byte
}

func newMockEndpointsManager(externalBaseURL string, logger *zap.Logger) *mockEndpointsManager {
	m := &mockEndpointsManager{
		router:          mux.NewRouter(),
		endpoints:       make(map[string]*MockEndpoint),
		externalBaseURL: externalBaseURL,
		logger:          logger,
	}
	m.router.PathPrefix(endpointPathPrefix + "{id}").HandlerFunc(m.serveEndpoint)
	m.router.NotFoundHandler = http.HandlerFunc(m.notFound)
	return m
}

func (m *mockEndpointsManager) newMockEndpoint(handler http.Handler, options ...MockEndpointOption) *MockEndpoint {
	e := &MockEndpoint{
		owner:    m,
		handler:  handler,
		requests: make(chan IncomingRequestInfo, recordedRequestsBufferSize),
	}
	_ = helpers.ApplyOptions(e, options...)
	e.closed, e.close = context.WithCancel(context.Background())

	m.lock.Lock()
	m.lastEndpointID++
	e.id = strconv.Itoa(m.lastEndpointID)
	e.basePath = endpointPathPrefix + e.id
	m.endpoints[e.id] = e
	e.logger = m.logger.With(zap.String("endpoint", e.basePath))
	m.lock.Unlock()
	return e
}

func (m *mockEndpointsManager) serveHTTP(w http.ResponseWriter, r *http.Request) {
	m.router.ServeHTTP(w, r)
}

func (m *mockEndpointsManager) notFound(w http.ResponseWriter, r *http.Request) {
	m.logger.Debug("request for unrecognized URL path", zap.String("path", r.URL.Path))
	w.WriteHeader(http.StatusNotFound)
}

func (m *mockEndpointsManager) serveEndpoint(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	e := m.endpoints[mux.Vars(r)["id"]]
	m.lock.Unlock()
	if e == nil || e.closed.Err() != nil {
		m.notFound(w, r)
		return
	}
	e.serve(w, r)
}

func (e *MockEndpoint) serve(w http.ResponseWriter, r *http.Request) {
	info := IncomingRequestInfo{Headers: r.Header, Method: r.Method, URL: *r.URL}
	info.URL.Path = strings.TrimPrefix(r.URL.Path, e.basePath)
	if info.URL.Path == "" {
		info.URL.Path = "/"
	}
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			e.logger.Warn("could not read request body", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if len(data) > 0 {
			info.Body = data
		}
	}

	// The request is cancelled either by the client or by closing the endpoint.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(e.closed, cancel)
	defer stop()

	req := r.WithContext(ctx)
	relativeURL := info.URL
	req.URL = &relativeURL
	req.Body = io.NopCloser(bytes.NewReader(info.Body))

	if !helpers.NonBlockingSend(e.requests, info) {
		e.logger.Debug("request buffer was full", zap.String("path", info.URL.Path))
	}

	recorder := &statusRecorder{ResponseWriter: w}
	e.handler.ServeHTTP(recorder, req)
	if recorder.status == http.StatusNotFound || recorder.status == http.StatusMethodNotAllowed {
		e.logger.Debug("endpoint could not serve request",
			zap.String("description", e.description),
			zap.String("method", r.Method),
			zap.String("path", info.URL.Path),
			zap.Int("status", recorder.status))
	}
}

// BaseURL returns the absolute URL of the endpoint, with no trailing slash.
func (e *MockEndpoint) BaseURL() string {
	e.owner.lock.Lock()
	defer e.owner.lock.Unlock()
	return e.owner.externalBaseURL + e.basePath
}

// AwaitRequest waits for the next request to the endpoint. It gives up early if the endpoint
// is closed.
func (e *MockEndpoint) AwaitRequest(timeout time.Duration) (IncomingRequestInfo, error) {
	if r, ok := helpers.TryReceive(e.closed, e.requests, timeout).Get(); ok {
		return r, nil
	}
	return IncomingRequestInfo{}, fmt.Errorf("timed out waiting for a request to %q (%s)", e.description, e.basePath)
}

// RequireRequest is AwaitRequest that fails and terminates the test on timeout.
func (e *MockEndpoint) RequireRequest(t helpers.TestContext, timeout time.Duration) IncomingRequestInfo {
	r, err := e.AwaitRequest(timeout)
	if err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
	return r
}

// Close unregisters the endpoint and cancels the context of every request it is serving.
// Later requests to it get a 404.
func (e *MockEndpoint) Close() {
	e.owner.lock.Lock()
	_, registered := e.owner.endpoints[e.id]
	delete(e.owner.endpoints, e.id)
	e.owner.lock.Unlock()
	if registered {
		e.logger.Debug("closing endpoint", zap.String("description", e.description))
	}
	e.close()
}

// NewMockEndpoint serves handler under a new base URL on the harness listener. The handler
// sees request paths relative to that base URL, and it can also receive requests for any
// subpath of it.
func (h *Harness) NewMockEndpoint(handler http.Handler, options ...MockEndpointOption) *MockEndpoint {
	return h.mockEndpoints.newMockEndpoint(handler, options...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
