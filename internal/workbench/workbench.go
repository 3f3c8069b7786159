package workbench

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jwtly10/go-reqbench/internal/history"
	"github.com/jwtly10/go-reqbench/internal/state"
)

// Workbench owns the request being edited and the last response for one session.
// Build it once at startup and hand it to whatever needs the state.
type Workbench struct {
	Request  *state.RequestState
	Response *state.ResponseState

	history *history.Repository
	logger  *slog.Logger

	unsubscribe []func()
}

func New(history *history.Repository, logger *slog.Logger) *Workbench {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	w := &Workbench{
		Request:  state.NewRequestState(),
		Response: state.NewResponseState(),
		history:  history,
		logger:   logger,
	}

	w.unsubscribe = append(w.unsubscribe,
		w.Request.Subscribe(func(r state.Request) {
			w.logger.Debug("request state changed", "method", r.Method, "url", r.URL, "body_len", len(r.Body), "headers_len", len(r.Headers))
		}),
		w.Response.Subscribe(func(r state.Response) {
			w.logger.Debug("response state changed", "body_len", len(r.Body), "headers_len", len(r.Headers))
		}),
	)

	return w
}

// SaveRequest stores the current request snapshot in history
func (w *Workbench) SaveRequest(ctx context.Context) (*history.Entry, error) {
	entry, err := w.history.Create(ctx, w.Request.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}

	w.logger.Info("saved request to history", "id", entry.ID, "method", entry.Request.Method, "url", entry.Request.URL)
	return entry, nil
}

// RestoreRequest loads a saved entry back into the request state, one setter per field
func (w *Workbench) RestoreRequest(ctx context.Context, id uuid.UUID) (state.Request, error) {
	entry, err := w.history.Get(ctx, id)
	if err != nil {
		return state.Request{}, fmt.Errorf("failed to load history entry %s: %w", id, err)
	}

	w.Request.UpdateMethod(entry.Request.Method)
	w.Request.UpdateURL(entry.Request.URL)
	w.Request.UpdateBody(entry.Request.Body)
	w.Request.UpdateHeaders(entry.Request.Headers)

	w.logger.Info("restored request from history", "id", id)
	return w.Request.Snapshot(), nil
}

func (w *Workbench) History(ctx context.Context, limit int) ([]history.Entry, error) {
	return w.history.List(ctx, limit)
}

func (w *Workbench) HistoryEntry(ctx context.Context, id uuid.UUID) (*history.Entry, error) {
	return w.history.Get(ctx, id)
}

func (w *Workbench) DeleteHistoryEntry(ctx context.Context, id uuid.UUID) error {
	return w.history.Delete(ctx, id)
}

// Close detaches the workbench's own observers
func (w *Workbench) Close() {
	for _, unsubscribe := range w.unsubscribe {
		unsubscribe()
	}
	w.unsubscribe = nil
}
