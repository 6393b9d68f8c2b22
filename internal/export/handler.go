package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/plotline/plotline/internal/document"
	"github.com/plotline/plotline/internal/plot"
)

type Handler struct {
	service *plot.Service
}

func NewHandler(service *plot.Service) *Handler {
	return &Handler{service: service}
}

// CSV serves every sample as graph,x,y rows.
func (h *Handler) CSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv", func(buf *bytes.Buffer, sess *plot.Session) error {
		return WriteCSV(buf, sess.Plot().Graphs())
	})
}

// Text serves the plot's expressions in the flat file format.
func (h *Handler) Text(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "txt", "text/plain; charset=utf-8", func(buf *bytes.Buffer, sess *plot.Session) error {
		return document.WriteExpressions(buf, sess.Plot().Expressions())
	})
}

// PNG serves a raster of the pane.
func (h *Handler) PNG(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "png", "image/png", func(buf *bytes.Buffer, sess *plot.Session) error {
		p := sess.Plot()
		return WritePNG(buf, p.Viewport(), p.Graphs())
	})
}

// export renders into memory under the session lock, then streams the
// result once the lock is released.
func (h *Handler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, fn func(*bytes.Buffer, *plot.Session) error) {
	plotID := mux.Vars(r)["plotId"]

	var buf bytes.Buffer
	var name string
	err := h.service.View(r.Context(), plotID, func(sess *plot.Session) error {
		name = sess.Name()
		return fn(&buf, sess)
	})
	if err != nil {
		if errors.Is(err, plot.ErrNotFound) {
			http.Error(w, "plot not found", http.StatusNotFound)
			return
		}
		slog.Error("export failed", "format", ext, "plot", plotID, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, sanitizeName(name), ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())

	slog.Info("export complete", "format", ext, "plot", plotID, "size", buf.Len())
}

func sanitizeName(name string) string {
	if name == "" {
		return "plot"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
