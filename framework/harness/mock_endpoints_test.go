package harness

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/helpers"
)

func TestMockEndpointServesRequest(t *testing.T) {
	m := newMockEndpointsManager("http://testharness:9999", zap.NewNop())

	e1 := m.newMockEndpoint(httphelpers.HandlerWithStatus(200))
	assert.Equal(t, "http://testharness:9999/endpoints/1", e1.BaseURL())

	e2 := m.newMockEndpoint(httphelpers.HandlerWithStatus(204))
	assert.Equal(t, "http://testharness:9999/endpoints/2", e2.BaseURL())

	rr1 := httptest.NewRecorder()
	r1, _ := http.NewRequest("GET", e1.BaseURL(), nil)
	m.serveHTTP(rr1, r1)
	assert.Equal(t, 200, rr1.Code)

	rr2 := httptest.NewRecorder()
	r2, _ := http.NewRequest("GET", e2.BaseURL(), nil)
	m.serveHTTP(rr2, r2)
	assert.Equal(t, 204, rr2.Code)
}

func TestMockEndpointReceivesSubpath(t *testing.T) {
	m := newMockEndpointsManager("http://testharness:9999", zap.NewNop())

	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	e := m.newMockEndpoint(handler)

	for _, subpath := range []string{"", "/", "/login"} {
		rr := httptest.NewRecorder()
		r, _ := http.NewRequest("GET", e.BaseURL()+subpath, nil)
		m.serveHTTP(rr, r)
		received := <-requests
		if subpath == "" {
			assert.Equal(t, "/", received.Request.URL.Path)
		} else {
			assert.Equal(t, subpath, received.Request.URL.Path)
		}
	}
}

func TestMockEndpointRequestInfo(t *testing.T) {
	m := newMockEndpointsManager("http://testharness:9999", zap.NewNop())
	e := m.newMockEndpoint(httphelpers.HandlerWithStatus(200), MockEndpointDescription("login site"))

	_, err := e.AwaitRequest(time.Millisecond * 50)
	assert.ErrorContains(t, err, `"login site"`)

	rr1 := httptest.NewRecorder()
	r1, _ := http.NewRequest("GET", e.BaseURL()+"/landing", nil)
	r1.Header.Add("header1", "value1")
	m.serveHTTP(rr1, r1)
	req1, err := e.AwaitRequest(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "GET", req1.Method)
	assert.Equal(t, "/landing", req1.URL.Path)
	assert.Nil(t, req1.Body)
	assert.Equal(t, "value1", req1.Headers.Get("header1"))

	rr2 := httptest.NewRecorder()
	r2, _ := http.NewRequest("POST", e.BaseURL()+"/login", bytes.NewBufferString("userName=alice"))
	m.serveHTTP(rr2, r2)
	req2 := e.RequireRequest(&helpers.TestRecorder{}, time.Second)
	assert.Equal(t, "POST", req2.Method)
	assert.Equal(t, []byte("userName=alice"), req2.Body)
}

func TestRequireRequestFailsTest(t *testing.T) {
	m := newMockEndpointsManager("http://testharness:9999", zap.NewNop())
	e := m.newMockEndpoint(httphelpers.HandlerWithStatus(200))

	var rec helpers.TestRecorder
	e.RequireRequest(&rec, time.Millisecond*10)
	assert.True(t, rec.Terminated)
	assert.Len(t, rec.Errors, 1)
}

func TestClosedMockEndpointReturns404(t *testing.T) {
	m := newMockEndpointsManager("http://testharness:9999", zap.NewNop())
	e := m.newMockEndpoint(httphelpers.HandlerWithStatus(200))
	e.Close()
	e.Close()

	rr := httptest.NewRecorder()
	r, _ := http.NewRequest("GET", e.BaseURL(), nil)
	m.serveHTTP(rr, r)
	assert.Equal(t, 404, rr.Code)
}

func TestUnrecognizedPathReturns404(t *testing.T) {
	m := newMockEndpointsManager("http://testharness:9999", zap.NewNop())
	for _, path := range []string{"/other", "/endpoints/99"} {
		rr := httptest.NewRecorder()
		r, _ := http.NewRequest("GET", "http://testharness:9999"+path, nil)
		m.serveHTTP(rr, r)
		assert.Equal(t, 404, rr.Code, path)
	}
}

func TestServeHostsMockEndpoints(t *testing.T) {
	h, _ := newHarness(t, validProperties)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port, err := h.Serve(ctx, 0)
	require.NoError(t, err)
	require.NotZero(t, port)

	e := h.NewMockEndpoint(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello from "+r.URL.Path)
	}))
	resp, err := http.Get(e.BaseURL() + "/landing")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "hello from /landing", string(body))
}

func TestCloseCancelsRequestsInProgress(t *testing.T) {
	m := newMockEndpointsManager("http://testharness:9999", zap.NewNop())
	cancelled := make(chan struct{})
	e := m.newMockEndpoint(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(cancelled)
	}))

	go func() {
		r, _ := http.NewRequest("GET", e.BaseURL()+"/loader", nil)
		m.serveHTTP(httptest.NewRecorder(), r)
	}()
	received, err := e.AwaitRequest(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "/loader", received.URL.Path)

	e.Close()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		assert.Fail(t, "request context was not cancelled")
	}

	_, err = e.AwaitRequest(time.Minute)
	assert.Error(t, err)
}
