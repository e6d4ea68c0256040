package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"skabillium/memo/cmd/db"
)

// Response is the envelope of every HTTP API reply:
//
//	{"result": "OK", "data": {...}, "error": ""}
//	{"result": "ERROR", "data": null, "error": "error description"}
type Response struct {
	Result string          `json:"result"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

type entryRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Mood  string   `json:"mood"`
	Tags  []string `json:"tags"`
}

// API exposes diaries over HTTP. Every call runs through the same Executor as
// the RESP server.
type API struct {
	server   *http.Server
	executor *Executor
	hub      *Hub
	limiter  *ClientLimiter
	logger   *slog.Logger
	done     chan struct{}
}

// NewAPI builds the HTTP API. A nil limiter disables rate limiting.
func NewAPI(addr string, executor *Executor, hub *Hub, limiter *ClientLimiter, metrics *Metrics, logger *slog.Logger) *API {
	api := &API{
		executor: executor,
		hub:      hub,
		limiter:  limiter,
		logger:   logger.With("component", "http"),
		done:     make(chan struct{}),
	}

	r := mux.NewRouter()
	r.Use(api.corsHeaders)
	if limiter != nil {
		r.Use(limiter.Middleware(api.handleLimited))
	}
	r.HandleFunc("/diaries/{name}/entries", api.handleGetEntries).Methods(http.MethodGet)
	r.HandleFunc("/diaries/{name}/entries", api.handleCreateEntry).Methods(http.MethodPost)
	r.HandleFunc("/diaries/{name}/entries/{end:front|back}", api.handleRemoveEntry).Methods(http.MethodDelete)
	r.HandleFunc("/diaries/{name}/tags", api.handleGetTags).Methods(http.MethodGet)
	r.HandleFunc("/diaries/{name}/seed", api.handleSeed).Methods(http.MethodPost)
	r.HandleFunc("/diaries/{name}", api.handleReset).Methods(http.MethodDelete)
	r.HandleFunc("/diaries/{name}/watch", hub.Handler(websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}, func(req *http.Request) string {
		return mux.Vars(req)["name"]
	})).Methods(http.MethodGet)
	r.HandleFunc("/health", api.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler())

	api.server = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	return api
}

func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Start() error {
	if a.limiter != nil {
		go a.pruneLimiter()
	}

	a.logger.Info("http api started", "addr", a.server.Addr)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *API) Close() error {
	close(a.done)
	a.hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

func (a *API) pruneLimiter() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			if n := a.limiter.Prune(5 * time.Minute); n > 0 {
				a.logger.Debug("pruned idle rate limit buckets", "count", n)
			}
		}
	}
}

// execute runs a command in a session that is always authenticated: the HTTP
// API is meant to be bound to localhost only.
func (a *API) execute(cmd *Command) (any, error) {
	return a.executor.Execute(&Session{Authenticated: true, RespVersion: 3}, cmd)
}

// handleGetEntries returns the entries of a diary from the most recent one.
func (a *API) handleGetEntries(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	entries, err := a.execute(&Command{Kind: CmdDiaryEntries, Name: "dentries", Key: name})
	a.writeResult(w, http.StatusOK, entries, err)
}

// handleCreateEntry inserts an entry at the front (default) or the back of a
// diary, as selected by the "at" query parameter.
func (a *API) handleCreateEntry(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	cmd := &Command{Kind: CmdDiaryLPush, Name: "dlpush", Key: name}
	switch at := req.URL.Query().Get("at"); at {
	case "", "front":
	case "back":
		cmd.Kind, cmd.Name = CmdDiaryRPush, "drpush"
	default:
		a.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid insert position '%s' (need 'front' or 'back')", at))
		return
	}

	var body entryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot unmarshal request json: %s", err))
		return
	}
	cmd.Entry = EntryArgs{Title: body.Title, Body: body.Body, Mood: body.Mood, Tags: body.Tags}

	entry, err := a.execute(cmd)
	a.writeResult(w, http.StatusCreated, entry, err)
}

func (a *API) handleRemoveEntry(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	cmd := &Command{Kind: CmdDiaryLPop, Name: "dlpop", Key: vars["name"]}
	if vars["end"] == "back" {
		cmd.Kind, cmd.Name = CmdDiaryRPop, "drpop"
	}

	entry, err := a.execute(cmd)
	a.writeResult(w, http.StatusOK, entry, err)
}

func (a *API) handleGetTags(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	tags, err := a.execute(&Command{Kind: CmdDiaryTags, Name: "dtags", Key: name})
	a.writeResult(w, http.StatusOK, tags, err)
}

func (a *API) handleSeed(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	n, err := a.execute(&Command{Kind: CmdDiarySeed, Name: "dseed", Key: name})
	a.writeResult(w, http.StatusOK, map[string]any{"count": n}, err)
}

func (a *API) handleReset(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	_, err := a.execute(&Command{Kind: CmdDiaryReset, Name: "dreset", Key: name})
	a.writeResult(w, http.StatusOK, nil, err)
}

func (a *API) handleLimited(w http.ResponseWriter, req *http.Request) {
	a.writeError(w, http.StatusTooManyRequests, "too many requests")
}

func (a *API) handleHealth(w http.ResponseWriter, req *http.Request) {
	a.writeResult(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
}

func (a *API) writeResult(w http.ResponseWriter, status int, data any, err error) {
	if err != nil {
		status, message := httpError(err)
		a.writeError(w, status, message)
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		a.logger.Error("marshal response", "err", err)
		a.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	a.write(w, status, &Response{Result: "OK", Data: raw})
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.write(w, status, &Response{Result: "ERROR", Data: json.RawMessage("null"), Error: message})
}

func (a *API) write(w http.ResponseWriter, status int, resp *Response) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Debug("write response", "err", err)
	}
}

// httpError maps an executor error onto a status code and a client message.
func httpError(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrEmptyList):
		return http.StatusConflict, "nothing to remove"
	case errors.Is(err, db.ErrWrongType):
		return http.StatusConflict, err.Error()
	case errors.Is(err, db.ErrMissingTitle), errors.Is(err, db.ErrMissingBody), errors.Is(err, db.ErrBodyTooLong):
		return http.StatusBadRequest, errors.Unwrap(err).Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func (a *API) corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, req)
	})
}
