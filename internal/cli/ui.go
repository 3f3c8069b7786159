package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/jwtly10/go-reqbench/internal/client"
	"github.com/jwtly10/go-reqbench/internal/history"
	"github.com/jwtly10/go-reqbench/internal/proto"
	"github.com/jwtly10/go-reqbench/internal/state"
)

const (
	previewWidth    = 60
	visibleChanges  = 6
	dashboardRule   = "══════════════════════════════════════════════════════\n"
	changeLogRule   = "────────────────────────────────────────────────────\n"
	emptyFieldLabel = "(empty)"
)

func (a *App) render() string {
	var b strings.Builder

	// Header
	b.WriteString(color.Bold.Sprintf(" reqbench%45s\n", time.Now().Format("15:04:05")))
	b.WriteString(dashboardRule)
	b.WriteString(fmt.Sprintf(" server %s  %s %s\n\n",
		a.Cfg.ServerURL,
		connectionBadge("request", a.connected[proto.StoreRequest]),
		connectionBadge("response", a.connected[proto.StoreResponse])))

	// Request Section
	b.WriteString(color.Bold.Sprint("📝 REQUEST\n"))
	method := a.request.Method
	if method == "" {
		method = "-"
	}
	b.WriteString(fmt.Sprintf("   %s %s\n", color.Cyan.Sprint(method), orEmpty(a.request.URL)))
	b.WriteString(fmt.Sprintf("   headers: %s\n", describeText(a.request.Headers)))
	b.WriteString(fmt.Sprintf("   body:    %s\n\n", describeText(a.request.Body)))

	// Response Section
	b.WriteString(color.Bold.Sprint("📨 RESPONSE\n"))
	b.WriteString(fmt.Sprintf("   headers: %s\n", describeText(a.response.Headers)))
	b.WriteString(fmt.Sprintf("   body:    %s\n", describeText(a.response.Body)))
	if a.response.Body != "" {
		b.WriteString("   " + color.Gray.Sprint(preview(a.response.Body)) + "\n")
	}
	b.WriteString("\n")

	// Stats Section
	b.WriteString(color.Bold.Sprint("📊 STATS\n"))
	b.WriteString(fmt.Sprintf("   %d snapshots • %d errors\n", a.stats.snapshots, a.stats.errors))
	if a.lastErr != "" {
		b.WriteString("   last error: " + color.Red.Sprint(a.lastErr) + "\n")
	}
	b.WriteString("\n")

	// Change log Section
	b.WriteString(color.Bold.Sprint("CHANGES (newest first)\n"))
	b.WriteString(changeLogRule)

	shown := 0
	for i := len(a.changes) - 1; i >= 0 && shown < visibleChanges; i-- {
		c := a.changes[i]
		b.WriteString(fmt.Sprintf("   %s  %-8s %-8s %s\n",
			c.timestamp.Format("15:04:05"),
			c.store,
			c.field,
			humanize.Bytes(uint64(c.size))))
		shown++
	}

	// Footer
	b.WriteString("\nPress Ctrl+C to quit\n")
	return b.String()
}

func (a *App) redraw() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.clearScreen()
	fmt.Fprint(a.out, a.render())
}

// printSnapshot writes one plain line per snapshot, used when stdout isn't a terminal
func (a *App) printSnapshot(snap client.SnapshotEvent) {
	ts := snap.Timestamp.Format(time.RFC3339)
	switch {
	case snap.Request != nil:
		fmt.Fprintf(a.out, "%s request  %s\n", ts, formatRequest(*snap.Request))
	case snap.Response != nil:
		fmt.Fprintf(a.out, "%s response %s\n", ts, formatResponse(*snap.Response))
	}
}

func (a *App) renderHistory(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No saved requests")
		return
	}

	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  %s  %s\n",
			color.Gray.Sprint(e.ID.String()),
			humanize.Time(e.Timestamp),
			formatRequest(e.Request))
	}
}

func formatRequest(r state.Request) string {
	method := r.Method
	if method == "" {
		method = "-"
	}
	return fmt.Sprintf("%s %s (headers %s, body %s)",
		method,
		orEmpty(r.URL),
		humanize.Bytes(uint64(len(r.Headers))),
		humanize.Bytes(uint64(len(r.Body))))
}

func formatResponse(r state.Response) string {
	return fmt.Sprintf("headers %s, body %s",
		humanize.Bytes(uint64(len(r.Headers))),
		humanize.Bytes(uint64(len(r.Body))))
}

// describeText summarises an opaque text field as size and line count
func describeText(s string) string {
	if s == "" {
		return color.Gray.Sprint(emptyFieldLabel)
	}
	lines := strings.Count(s, "\n") + 1
	return fmt.Sprintf("%s, %d line(s)", humanize.Bytes(uint64(len(s))), lines)
}

// preview flattens s to a single line and truncates it to previewWidth runes
func preview(s string) string {
	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= previewWidth {
		return flat
	}
	return string(runes[:previewWidth]) + "..."
}

func orEmpty(s string) string {
	if s == "" {
		return emptyFieldLabel
	}
	return s
}

func connectionBadge(name string, connected bool) string {
	if connected {
		return color.Green.Sprint("● " + name)
	}
	return color.Red.Sprint("○ " + name)
}

func (a *App) clearScreen() {
	fmt.Fprint(a.out, "\033[H\033[2J")
}
