package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwtly10/go-reqbench/internal/client"
	"github.com/jwtly10/go-reqbench/internal/config"
	"github.com/jwtly10/go-reqbench/internal/proto"
	"github.com/jwtly10/go-reqbench/internal/state"
)

const maxChangeLog = 100

type App struct {
	Cfg    *config.ClientConfig
	client *client.Client

	request   state.Request
	response  state.Response
	connected map[proto.StoreKind]bool
	changes   []changeEntry
	stats     stats
	lastErr   string
	mu        sync.Mutex // Protect concurrent access to app state

	out         io.Writer
	interactive bool
	logger      *slog.Logger
}

type stats struct {
	snapshots int
	errors    int
}

// changeEntry is one field that changed between two snapshots
type changeEntry struct {
	timestamp time.Time
	store     proto.StoreKind
	field     string
	size      int
}

func NewApp(cfg *config.ClientConfig, out io.Writer, interactive bool, logger *slog.Logger) *App {
	return &App{
		Cfg:         cfg,
		client:      client.New(cfg, logger),
		connected:   make(map[proto.StoreKind]bool),
		changes:     make([]changeEntry, 0),
		out:         out,
		interactive: interactive,
		logger:      logger,
	}
}

// Watch subscribes to both stores and renders them until ctx is cancelled or the server goes away
func (a *App) Watch(ctx context.Context) error {
	var watchers []*client.Watcher
	for _, store := range []proto.StoreKind{proto.StoreRequest, proto.StoreResponse} {
		w, err := a.client.Watch(store, a.handleEvent)
		if err != nil {
			for _, w := range watchers {
				w.Close()
			}
			return fmt.Errorf("failed to watch %s: %w", store, err)
		}
		watchers = append(watchers, w)
	}
	defer func() {
		for _, w := range watchers {
			w.Close()
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watchers[0].Done():
			return fmt.Errorf("lost connection to %s", a.Cfg.ServerURL)
		case <-watchers[1].Done():
			return fmt.Errorf("lost connection to %s", a.Cfg.ServerURL)
		case <-ticker.C:
			if a.interactive {
				a.redraw()
			}
		}
	}
}

// Set updates a field addressed as "<store>.<field>", e.g. "request.url"
func (a *App) Set(ctx context.Context, target, value string) error {
	store, field, ok := strings.Cut(target, ".")
	if !ok || field == "" {
		return fmt.Errorf("invalid target %q, expected <store>.<field> such as request.url", target)
	}

	switch proto.StoreKind(store) {
	case proto.StoreRequest:
		r, err := a.client.SetRequestField(ctx, field, value)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, formatRequest(r))
	case proto.StoreResponse:
		r, err := a.client.SetResponseField(ctx, field, value)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, formatResponse(r))
	default:
		return fmt.Errorf("unknown store %q, expected request or response", store)
	}
	return nil
}

func (a *App) Save(ctx context.Context) error {
	entry, err := a.client.SaveRequest(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s  %s\n", entry.ID, formatRequest(entry.Request))
	return nil
}

func (a *App) History(ctx context.Context, limit int) error {
	entries, err := a.client.History(ctx, limit)
	if err != nil {
		return err
	}
	a.renderHistory(entries)
	return nil
}

func (a *App) Restore(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid history id %q: %w", rawID, err)
	}

	r, err := a.client.RestoreRequest(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %s\n%s\n", id, formatRequest(r))
	return nil
}

func (a *App) handleEvent(event client.Event) {
	a.mu.Lock()

	switch event.Type {
	case client.EventTypeError:
		e := event.Payload.(client.ErrorEvent)
		a.stats.errors++
		a.lastErr = e.Error
		if e.ConnectionFailed {
			a.connected[e.Store] = false
			a.logger.Error("connection to reqbench server failed", "store", e.Store, "error", e.Error)
		}

	case client.EventTypeSnapshot:
		snap := event.Payload.(client.SnapshotEvent)
		a.stats.snapshots++
		a.connected[snap.Store] = true

		switch {
		case snap.Request != nil:
			a.recordChanges(snap.Timestamp, proto.StoreRequest, requestFields(a.request), requestFields(*snap.Request))
			a.request = *snap.Request
		case snap.Response != nil:
			a.recordChanges(snap.Timestamp, proto.StoreResponse, responseFields(a.response), responseFields(*snap.Response))
			a.response = *snap.Response
		}

		if !a.interactive {
			a.printSnapshot(snap)
		}
	}

	a.mu.Unlock()

	if a.interactive {
		a.redraw()
	}
}

// recordChanges appends a change entry for every field whose value differs
func (a *App) recordChanges(ts time.Time, store proto.StoreKind, before, after map[string]string) {
	for _, name := range fieldOrder(store) {
		if before[name] == after[name] {
			continue
		}
		a.changes = append(a.changes, changeEntry{
			timestamp: ts,
			store:     store,
			field:     name,
			size:      len(after[name]),
		})
	}

	// Keep only the most recent changes
	if len(a.changes) > maxChangeLog {
		a.changes = a.changes[len(a.changes)-maxChangeLog:]
	}
}

func fieldOrder(store proto.StoreKind) []string {
	if store == proto.StoreResponse {
		return state.ResponseFields
	}
	return state.RequestFields
}

func requestFields(r state.Request) map[string]string {
	return map[string]string{"method": r.Method, "url": r.URL, "body": r.Body, "headers": r.Headers}
}

func responseFields(r state.Response) map[string]string {
	return map[string]string{"body": r.Body, "headers": r.Headers}
}
