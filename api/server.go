package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledanim/animation"
	"github.com/matt-g-everett/ledanim/stream"
)

const (
	writeWait    = 200 * time.Millisecond
	clientBuffer = 64
	doTimeout    = 2 * time.Second
)

// Message is pushed to /events subscribers for every watched event.
type Message struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Delta        float64         `json:"delta"`
	TimeMs       float64         `json:"timeMs"`
	Iteration    int             `json:"iteration"`
	PlaybackRate float64         `json:"playbackRate"`
	Keyframe     string          `json:"keyframe,omitempty"`
	Props        animation.Props `json:"props,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Api exposes the controller over HTTP.
type Api struct {
	controller *stream.Controller
	log        zerolog.Logger
	started    time.Time
	upgrader   websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewApi(controller *stream.Controller, logger zerolog.Logger) *Api {
	a := new(Api)
	a.controller = controller
	a.log = logger
	a.started = time.Now()
	a.upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	a.clients = make(map[*client]bool)
	return a
}

// Watch forwards the events of anim to /events subscribers. Like every
// animation call it must run on the controller goroutine, or before Run.
func (a *Api) Watch(name string, anim *animation.Animation) {
	for _, typ := range animation.EventTypes {
		anim.AddEventListener(typ, func(ev *animation.Event) error {
			a.broadcast(Message{
				Name:         name,
				Type:         string(ev.Type),
				Delta:        ev.CurrentDelta,
				TimeMs:       float64(ev.CurrentTime) / float64(time.Millisecond),
				Iteration:    ev.Iteration,
				PlaybackRate: ev.PlaybackRate,
				Keyframe:     keyframeID(ev.Keyframe),
				Props:        ev.Props,
			})
			return nil
		})
	}
}

func keyframeID(kf *animation.Keyframe) string {
	if kf == nil {
		return ""
	}
	return kf.ID
}

// Clients is the number of connected /events subscribers.
func (a *Api) Clients() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

// Handler routes every endpoint.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /animations", a.handleList)
	mux.HandleFunc("POST /animations/{name}/{action}", a.handleAction)
	mux.HandleFunc("GET /events", a.handleEvents)
	mux.HandleFunc("GET /health", a.handleHealth)
	return withCORS(mux)
}

// Serve listens on addr until ctx is cancelled.
func (a *Api) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		a.closeClients()
	}()

	a.log.Info().Str("addr", addr).Msg("HTTP server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *Api) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), doTimeout)
	defer cancel()

	var status []stream.Status
	if err := a.controller.Do(ctx, func() { status = a.controller.Status() }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *Api) handleAction(w http.ResponseWriter, r *http.Request) {
	cmd := stream.Command{
		Animation: r.PathValue("name"),
		Action:    r.PathValue("action"),
	}
	if v := r.URL.Query().Get("value"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cmd.Value = f
	}

	ctx, cancel := context.WithTimeout(r.Context(), doTimeout)
	defer cancel()

	var applyErr error
	if err := a.controller.Do(ctx, func() { applyErr = a.controller.Apply(cmd) }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	switch {
	case errors.Is(applyErr, stream.ErrUnknownAnimation):
		writeError(w, http.StatusNotFound, applyErr)
	case applyErr != nil:
		writeError(w, http.StatusBadRequest, applyErr)
	default:
		a.log.Info().Str("name", cmd.Animation).Str("action", cmd.Action).Float64("value", cmd.Value).Msg("command applied")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *Api) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_s":   time.Since(a.started).Seconds(),
		"animations": len(a.controller.Names()),
		"clients":    a.Clients(),
	})
}

func (a *Api) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	a.mu.Lock()
	a.clients[c] = true
	a.mu.Unlock()
	a.log.Debug().Str("remote", r.RemoteAddr).Msg("events client connected")

	go a.writePump(c)
	go func() {
		defer a.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (a *Api) writePump(c *client) {
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			a.log.Debug().Err(err).Msg("write event")
			c.conn.Close()
			return
		}
	}
}

func (a *Api) drop(c *client) {
	a.mu.Lock()
	if a.clients[c] {
		delete(a.clients, c)
		close(c.send)
	}
	a.mu.Unlock()
	c.conn.Close()
}

func (a *Api) closeClients() {
	a.mu.RLock()
	clients := make([]*client, 0, len(a.clients))
	for c := range a.clients {
		clients = append(clients, c)
	}
	a.mu.RUnlock()
	for _, c := range clients {
		a.drop(c)
	}
}

// broadcast never blocks the frame loop; slow clients miss messages.
func (a *Api) broadcast(m Message) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.clients) == 0 {
		return
	}

	b, err := json.Marshal(m)
	if err != nil {
		a.log.Warn().Err(err).Str("name", m.Name).Msg("encode event")
		return
	}
	for c := range a.clients {
		select {
		case c.send <- b:
		default:
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
