package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/export"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/store"
)

// SessionSummary is one row of the session listing
type SessionSummary struct {
	Key         string
	Destination string
	StartDate   string
	EndDate     string
	Messages    int
	UpdatedAt   time.Time
}

// SessionsHandler lists, shows, deletes and exports stored sessions
type SessionsHandler struct {
	*BaseHandler
	store   store.Store
	version string
}

// NewSessionsHandler creates a sessions handler over st
func NewSessionsHandler(base *BaseHandler, st store.Store, version string) *SessionsHandler {
	return &SessionsHandler{BaseHandler: base, store: st, version: version}
}

// List returns summaries of every stored session, ordered by key
func (h *SessionsHandler) List(ctx context.Context) ([]SessionSummary, error) {
	keys, err := h.store.Keys(ctx)
	if err != nil {
		return nil, errors.NewStoreError("list", "", err)
	}

	summaries := make([]SessionSummary, 0, len(keys))
	for _, key := range keys {
		rec, ok, err := h.store.Load(ctx, key)
		if err != nil {
			return nil, errors.NewStoreError("load", key, err)
		}
		if !ok {
			continue
		}
		summaries = append(summaries, SessionSummary{
			Key:         key,
			Destination: rec.Session.Destination,
			StartDate:   rec.Session.StartDate,
			EndDate:     rec.Session.EndDate,
			Messages:    len(rec.Messages),
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	return summaries, nil
}

// Show returns the stored record for key
func (h *SessionsHandler) Show(ctx context.Context, key string) (*store.Record, error) {
	rec, ok, err := h.store.Load(ctx, key)
	if err != nil {
		return nil, errors.NewStoreError("load", key, err)
	}
	if !ok {
		return nil, errors.NewSessionNotFoundError(key)
	}
	return rec, nil
}

// Delete removes key; deleting a missing session is an error
func (h *SessionsHandler) Delete(ctx context.Context, key string) error {
	if _, err := h.Show(ctx, key); err != nil {
		return err
	}
	if err := h.store.Delete(ctx, key); err != nil {
		return errors.NewStoreError("delete", key, err)
	}
	h.Logger.Info("Session deleted", logging.String("session", key))
	return nil
}

// Export formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// FormatForPath picks an export format from the file extension
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".json":
		return FormatJSON
	default:
		return FormatMarkdown
	}
}

// Render returns key rendered in format
func (h *SessionsHandler) Render(ctx context.Context, key, format string) ([]byte, error) {
	rec, err := h.Show(ctx, key)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatMarkdown, "md", "":
		return []byte(export.Transcript(rec)), nil
	case FormatJSON:
		return export.NewJSONExporter(h.version).WithMessages(true).Marshal(rec)
	case FormatHTML:
		exporter, err := export.NewHTMLExporter()
		if err != nil {
			return nil, err
		}
		var buf strings.Builder
		if err := exporter.Render(&buf, export.Title(rec), []byte(export.Transcript(rec))); err != nil {
			return nil, err
		}
		return []byte(buf.String()), nil
	default:
		return nil, errors.NewError(fmt.Sprintf("Unknown export format %q (use markdown, html or json)", format), errors.ExitValidationError)
	}
}

// Export writes key to outputPath in the format its extension implies
func (h *SessionsHandler) Export(ctx context.Context, key, outputPath string) error {
	rec, err := h.Show(ctx, key)
	if err != nil {
		return err
	}

	switch FormatForPath(outputPath) {
	case FormatHTML:
		exporter, err := export.NewHTMLExporter()
		if err != nil {
			return err
		}
		err = exporter.ExportToHTML(rec, outputPath)
		return wrapIO(err, outputPath)
	case FormatJSON:
		err := export.NewJSONExporter(h.version).WithMessages(true).ExportToJSON(rec, outputPath)
		return wrapIO(err, outputPath)
	default:
		data, err := h.Render(ctx, key, FormatMarkdown)
		if err != nil {
			return err
		}
		return wrapIO(os.WriteFile(outputPath, data, 0644), outputPath)
	}
}

func wrapIO(err error, path string) error {
	if err == nil {
		return nil
	}
	return errors.WrapError(err, "Failed to write "+path, errors.ExitIOError)
}
