package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// AuditHandler is a custom slog.Handler that appends records to a JSONL
// audit trail file. It batches entries and writes them asynchronously so
// record mutations are never blocked on disk flushes. Attributes attached
// via Logger.With land in every entry; group names prefix the keys with
// dots since the output stays one flat JSON object per line.
type AuditHandler struct {
	out     *auditWriter
	enabled bool
	level   slog.Level
	attrs   []slog.Attr // pre-set attributes, keys already group-qualified
	groups  []string
}

// auditWriter holds the file and batch state shared between a handler and
// every handler derived from it, so one Close drains them all.
type auditWriter struct {
	path       string
	file       *os.File
	batch      []string
	batchMu    sync.Mutex
	batchSize  int
	flushTimer *time.Timer
}

// NewAuditHandler creates a handler that appends log records to path.
// batchSize: number of entries to buffer before writing (0 = write immediately)
func NewAuditHandler(path string, batchSize int, enabled bool, level slog.Level) (*AuditHandler, error) {
	h := &AuditHandler{
		out: &auditWriter{
			path:      path,
			batch:     make([]string, 0, batchSize),
			batchSize: batchSize,
		},
		enabled: enabled,
		level:   level,
	}

	if enabled {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit trail: %w", err)
		}
		h.out.file = file
	}

	// Start periodic flush (every 5 seconds)
	if batchSize > 0 && enabled {
		h.out.flushTimer = time.AfterFunc(5*time.Second, h.out.periodicFlush)
	}

	return h, nil
}

// Enabled reports whether the handler handles records at the given level.
func (h *AuditHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled && level >= h.level
}

// Handle handles the Record.
func (h *AuditHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.enabled {
		return nil
	}

	// Convert slog.Record to one JSON line
	logData := map[string]any{
		"time":  r.Time.Format(time.RFC3339Nano),
		"level": r.Level.String(),
		"msg":   r.Message,
	}

	for _, a := range h.attrs {
		logData[a.Key] = a.Value.Resolve().Any()
	}

	prefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		logData[prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	line, err := json.Marshal(logData)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	return h.out.append(string(line))
}

// WithAttrs returns a new Handler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	prefix := h.groupPrefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup returns a new Handler with the given group appended to
// the receiver's existing groups.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = make([]string, 0, len(h.groups)+1)
	h2.groups = append(h2.groups, h.groups...)
	h2.groups = append(h2.groups, name)
	return &h2
}

func (h *AuditHandler) groupPrefix() string {
	prefix := ""
	for _, g := range h.groups {
		prefix += g + "."
	}
	return prefix
}

// Close flushes pending entries and closes the audit file.
func (h *AuditHandler) Close() error {
	if !h.enabled {
		return nil
	}
	if h.out.flushTimer != nil {
		h.out.flushTimer.Stop()
	}
	if err := h.out.flush(); err != nil {
		return err
	}
	return h.out.file.Close()
}

// append queues one line, flushing when the batch is full or when
// batching is off.
func (w *auditWriter) append(line string) error {
	w.batchMu.Lock()
	w.batch = append(w.batch, line)
	shouldFlush := len(w.batch) >= w.batchSize && w.batchSize > 0
	w.batchMu.Unlock()

	if shouldFlush || w.batchSize == 0 {
		return w.flush()
	}
	return nil
}

// flush appends all batched entries to the audit file.
func (w *auditWriter) flush() error {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return nil
	}
	pending := w.batch
	w.batch = make([]string, 0, w.batchSize)
	w.batchMu.Unlock()

	for _, line := range pending {
		if _, err := fmt.Fprintln(w.file, line); err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}
	}
	return w.file.Sync()
}

// periodicFlush drains the batch on a timer so slow days still hit disk.
func (w *auditWriter) periodicFlush() {
	_ = w.flush()
	if w.flushTimer != nil {
		w.flushTimer.Reset(5 * time.Second)
	}
}

// TeeHandler fans one record out to several handlers; used to combine the
// console handler with the audit trail.
type TeeHandler struct {
	handlers []slog.Handler
}

// NewTeeHandler creates a fan-out handler / Crée un handler de diffusion
func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

// Enabled reports whether any wrapped handler is enabled at the level.
func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every enabled handler.
func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs forwards the attributes to every wrapped handler.
func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: handlers}
}

// WithGroup forwards the group to every wrapped handler.
func (t *TeeHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: handlers}
}
