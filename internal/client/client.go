package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwtly10/go-reqbench/internal/config"
	"github.com/jwtly10/go-reqbench/internal/history"
	"github.com/jwtly10/go-reqbench/internal/proto"
	"github.com/jwtly10/go-reqbench/internal/state"
	"golang.org/x/net/websocket"
)

// Client talks to a reqbench server over its REST API and websocket subscriptions
type Client struct {
	cfg    *config.ClientConfig
	http   *http.Client
	logger *slog.Logger
}

// Watcher is a live subscription to one store on the server
type Watcher struct {
	store  proto.StoreKind
	ws     *websocket.Conn
	events EventHandler
	logger *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func New(cfg *config.ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Request returns the server's current request record
func (c *Client) Request(ctx context.Context) (state.Request, error) {
	var r state.Request
	err := c.do(ctx, http.MethodGet, "/api/request", nil, &r)
	return r, err
}

func (c *Client) Response(ctx context.Context) (state.Response, error) {
	var r state.Response
	err := c.do(ctx, http.MethodGet, "/api/response", nil, &r)
	return r, err
}

func (c *Client) SetRequestField(ctx context.Context, field, value string) (state.Request, error) {
	var r state.Request
	err := c.do(ctx, http.MethodPut, "/api/request/"+field, map[string]string{"value": value}, &r)
	return r, err
}

func (c *Client) SetResponseField(ctx context.Context, field, value string) (state.Response, error) {
	var r state.Response
	err := c.do(ctx, http.MethodPut, "/api/response/"+field, map[string]string{"value": value}, &r)
	return r, err
}

// SaveRequest stores the server's current request in history
func (c *Client) SaveRequest(ctx context.Context) (*history.Entry, error) {
	var e history.Entry
	if err := c.do(ctx, http.MethodPost, "/api/history", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]history.Entry, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var entries []history.Entry
	err := c.do(ctx, http.MethodGet, path, nil, &entries)
	return entries, err
}

func (c *Client) RestoreRequest(ctx context.Context, id uuid.UUID) (state.Request, error) {
	var r state.Request
	err := c.do(ctx, http.MethodPost, "/api/history/"+id.String()+"/restore", nil, &r)
	return r, err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("calling reqbench server", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach reqbench server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Watch subscribes to a store. events receives a snapshot straight away and another after every change,
// until the watcher is closed or the connection drops.
func (c *Client) Watch(store proto.StoreKind, events EventHandler) (*Watcher, error) {
	c.logger.Info("watching store", "store", store)

	wsConfig, err := c.cfg.NewWebSocketConfig(string(store))
	if err != nil {
		return nil, fmt.Errorf("failed to create websocket config: %w", err)
	}

	ws, err := websocket.DialConfig(wsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to reqbench server: %w", err)
	}

	w := &Watcher{
		store:  store,
		ws:     ws,
		events: events,
		logger: c.logger,
		done:   make(chan struct{}),
	}

	go w.handleMessages()

	return w, nil
}

// Set asks the server to update one field of the watched store
func (w *Watcher) Set(field, value string) error {
	return w.send(proto.Message{
		Type:    proto.MessageTypeUpdate,
		Payload: proto.FieldUpdate{Field: field, Value: value},
	})
}

// Done is closed once the watcher stops receiving
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.ws.Close()
	})
	return err
}

func (w *Watcher) send(msg proto.Message) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return websocket.JSON.Send(w.ws, msg)
}

func (w *Watcher) emit(e Event) {
	if w.events != nil {
		w.events(e)
	}
}

func (w *Watcher) handleMessages() {
	defer close(w.done)
	defer w.Close()

	for {
		var msg proto.Message
		if err := websocket.JSON.Receive(w.ws, &msg); err != nil {
			w.emit(Event{
				Type: EventTypeError,
				Payload: ErrorEvent{
					Store:            w.store,
					Error:            "lost connection to server: " + err.Error(),
					ConnectionFailed: true,
				},
			})
			w.logger.Debug("watcher stopped receiving", "store", w.store, "error", err)
			return
		}

		switch msg.Type {
		case proto.MessageTypeSnapshot:
			var snap proto.Snapshot
			if err := proto.DecodePayload(msg.Payload, &snap); err != nil {
				w.logger.Error("failed to decode snapshot", "error", err)
				continue
			}
			w.emit(Event{
				Type: EventTypeSnapshot,
				Payload: SnapshotEvent{
					Store:     snap.Store,
					Request:   snap.Request,
					Response:  snap.Response,
					Timestamp: time.Now(),
				},
			})

		case proto.MessageTypeError:
			var errPayload proto.ErrorPayload
			if err := proto.DecodePayload(msg.Payload, &errPayload); err != nil {
				w.logger.Error("failed to decode error message", "error", err)
				continue
			}
			w.logger.Warn("server rejected message", "store", w.store, "error", errPayload.Error)
			w.emit(Event{
				Type:    EventTypeError,
				Payload: ErrorEvent{Store: w.store, Error: errPayload.Error},
			})

		case proto.MessageTypePing:
			if err := w.send(proto.Message{Type: proto.MessageTypePong}); err != nil {
				w.logger.Error("failed to send websocket message", "error", err)
				return
			}

		case proto.MessageTypePong:

		default:
			w.logger.Warn("unknown message type", "type", msg.Type)
		}
	}
}
