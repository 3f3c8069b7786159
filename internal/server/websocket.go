package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jwtly10/go-reqbench/internal/proto"
	"github.com/jwtly10/go-reqbench/internal/state"
	"golang.org/x/net/websocket"
)

// subscriber is one websocket connection watching a store
type subscriber struct {
	ws   *websocket.Conn
	kind proto.StoreKind

	// Holds at most the newest snapshot, older undelivered ones are dropped
	mailbox chan proto.Message
	done    chan struct{}

	writeMu      sync.Mutex
	writeTimeout time.Duration
}

// handleWS upgrades /ws/{store} and streams snapshots of that store until the client goes away
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	kind := proto.StoreKind(chi.URLParam(r, "store"))
	if kind != proto.StoreRequest && kind != proto.StoreResponse {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown store %q", kind))
		return
	}

	wsServer := websocket.Server{
		Handshake: s.checkOrigin,
		Handler: func(ws *websocket.Conn) {
			s.serveSubscriber(&subscriber{
				ws:           ws,
				kind:         kind,
				mailbox:      make(chan proto.Message, 1),
				done:         make(chan struct{}),
				writeTimeout: s.writeTimeout,
			})
		},
	}
	wsServer.ServeHTTP(w, r)
}

// checkOrigin accepts any origin when CORS is open. Otherwise it accepts the configured
// origin and the server's own host, which is what the Go client sends.
func (s *Server) checkOrigin(cfg *websocket.Config, r *http.Request) error {
	origin, err := websocket.Origin(cfg, r)
	if err != nil {
		return err
	}
	cfg.Origin = origin

	allowed := s.allowedOrigin()
	if allowed == "*" {
		return nil
	}
	if origin == nil {
		return fmt.Errorf("missing origin")
	}
	if !sameOrigin(origin, allowed) && !sameHost(origin, r.Host) {
		return fmt.Errorf("origin %v not allowed", origin)
	}
	return nil
}

func sameOrigin(origin *url.URL, allowed string) bool {
	a, err := url.Parse(allowed)
	if err != nil {
		return false
	}
	return origin.Scheme == a.Scheme && origin.Host == a.Host
}

func sameHost(origin *url.URL, host string) bool {
	if origin.Scheme != "http" && origin.Scheme != "https" {
		return false
	}
	return host != "" && strings.EqualFold(origin.Host, host)
}

func (s *Server) serveSubscriber(sub *subscriber) {
	s.logger.Info("subscriber connected", "store", sub.kind, "remote_addr", sub.ws.Request().RemoteAddr)

	go s.writeLoop(sub)

	unsubscribe := s.subscribe(sub.kind, func(snap proto.Snapshot) {
		sub.offer(proto.Message{Type: proto.MessageTypeSnapshot, Payload: snap})
	})

	defer func() {
		unsubscribe()
		close(sub.done)
		sub.ws.Close()
		s.logger.Info("subscriber disconnected", "store", sub.kind)
	}()

	for {
		var msg proto.Message
		if err := websocket.JSON.Receive(sub.ws, &msg); err != nil {
			if err != io.EOF {
				s.logger.Debug("websocket receive failed", "store", sub.kind, "error", err)
			}
			return // Trigger deferred clean up
		}

		switch msg.Type {
		case proto.MessageTypePing:
			if err := sub.send(proto.Message{Type: proto.MessageTypePong}); err != nil {
				s.logger.Error("failed to send websocket message", "error", err)
				return
			}

		case proto.MessageTypePong:

		case proto.MessageTypeUpdate:
			var update proto.FieldUpdate
			if err := proto.DecodePayload(msg.Payload, &update); err != nil {
				s.sendError(sub, err)
				continue
			}
			if err := s.setField(sub.kind, update.Field, update.Value); err != nil {
				s.sendError(sub, err)
			}

		default:
			s.logger.Warn("unknown message type", "type", msg.Type)
			s.sendError(sub, fmt.Errorf("unknown message type %q", msg.Type))
		}
	}
}

// writeLoop forwards mailbox snapshots to the client so that store observers never wait on the network
func (s *Server) writeLoop(sub *subscriber) {
	for {
		select {
		case msg := <-sub.mailbox:
			if err := sub.send(msg); err != nil {
				s.logger.Debug("failed to send snapshot", "store", sub.kind, "error", err)
				// Closing unblocks the receive loop, which does the rest of the clean up
				sub.ws.Close()
				return
			}
		case <-sub.done:
			return
		}
	}
}

func (s *Server) sendError(sub *subscriber, err error) {
	msg := proto.Message{
		Type:    proto.MessageTypeError,
		Payload: proto.ErrorPayload{Error: err.Error()},
	}
	if sendErr := sub.send(msg); sendErr != nil {
		s.logger.Error("failed to send error message", "error", sendErr)
	}
}

func (s *Server) subscribe(kind proto.StoreKind, fn func(proto.Snapshot)) func() {
	if kind == proto.StoreResponse {
		return s.workbench.Response.Subscribe(func(r state.Response) {
			fn(proto.Snapshot{Store: kind, Response: &r})
		})
	}
	return s.workbench.Request.Subscribe(func(r state.Request) {
		fn(proto.Snapshot{Store: kind, Request: &r})
	})
}

func (s *Server) setField(kind proto.StoreKind, field, value string) error {
	if kind == proto.StoreResponse {
		return s.workbench.Response.SetField(field, value)
	}
	return s.workbench.Request.SetField(field, value)
}

// offer replaces whatever is waiting in the mailbox with msg, it never blocks
func (sub *subscriber) offer(msg proto.Message) {
	for {
		select {
		case sub.mailbox <- msg:
			return
		default:
		}

		select {
		case <-sub.mailbox:
		default:
		}
	}
}

// send writes one frame, giving up once writeTimeout passes so a stalled peer can't pin the writer
func (sub *subscriber) send(msg proto.Message) error {
	sub.writeMu.Lock()
	defer sub.writeMu.Unlock()

	if sub.writeTimeout > 0 {
		if err := sub.ws.SetWriteDeadline(time.Now().Add(sub.writeTimeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	return websocket.JSON.Send(sub.ws, msg)
}
