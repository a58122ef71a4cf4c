package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledanim/animation"
	"github.com/matt-g-everett/ledanim/stream"
)

func newTestServer(t *testing.T) (*Api, *stream.Controller, *httptest.Server) {
	t.Helper()
	c := stream.NewController(100, zerolog.Nop())
	a, err := animation.New(c.Scheduler(), animation.Options{
		Duration: time.Second,
		Keyframes: []animation.RawKeyframe{
			{Delta: 0, Props: map[string]*float64{"x": animation.V(0)}},
			{Delta: 1, Props: map[string]*float64{"x": animation.V(100)}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, c.Add("sweep", a))

	api := NewApi(c, zerolog.Nop())
	api.Watch("sweep", a)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(func() {
		api.closeClients()
		srv.Close()
		cancel()
		<-done
	})
	return api, c, srv
}

func post(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListAnimations(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/animations")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var status []stream.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Len(t, status, 1)
	assert.Equal(t, "sweep", status[0].Name)
	assert.Equal(t, animation.StateIdle, status[0].State)
}

func TestActions(t *testing.T) {
	_, c, srv := newTestServer(t)

	resp := post(t, srv.URL+"/animations/sweep/seek?value=0.5")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = post(t, srv.URL+"/animations/sweep/pause")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var delta float64
	var playing bool
	require.NoError(t, c.Do(context.Background(), func() {
		a, _ := c.Animation("sweep")
		delta = a.CurrentDelta()
		playing = a.Playing()
	}))
	assert.GreaterOrEqual(t, delta, 0.5)
	assert.False(t, playing)

	assert.Equal(t, http.StatusNotFound, post(t, srv.URL+"/animations/ghost/play").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/animations/sweep/rate?value=0").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/animations/sweep/rate?value=fast").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/animations/sweep/explode").StatusCode)

	resp, err := http.Get(srv.URL + "/animations/sweep/play")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1.0, body["animations"])
	assert.Equal(t, 0.0, body["clients"])
}

func TestEventsStream(t *testing.T) {
	api, _, srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return api.Clients() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, http.StatusNoContent, post(t, srv.URL+"/animations/sweep/play").StatusCode)

	seen := map[string]bool{}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for !seen["timeupdate"] {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, "sweep", m.Name)
		seen[m.Type] = true
		if m.Type == "timeupdate" {
			assert.Contains(t, m.Props, "x")
		}
	}
	assert.True(t, seen["play"], "play arrives before the first frame")
}

func TestEventsClientDisconnect(t *testing.T) {
	api, _, srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return api.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return api.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWriteJSONReportsEncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"x": math.NaN()})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "encode response")

	rec = httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"x": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"x":1}`, rec.Body.String())
}
