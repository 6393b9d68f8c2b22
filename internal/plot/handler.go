package plot

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/plotline/plotline/internal/document"
	"github.com/plotline/plotline/internal/engine"
	"github.com/plotline/plotline/internal/expr"
)

type Handler struct {
	service  *Service
	onChange func(plotID string)
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// OnChange registers fn to run after every successful or partially
// applied mutation, so live viewers can be refreshed.
func (h *Handler) OnChange(fn func(plotID string)) {
	h.onChange = fn
}

// Routes mounts the plot API on r, which is expected to be the
// authenticated /api subrouter.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/plots", h.List).Methods("GET")
	r.HandleFunc("/plots", h.Create).Methods("POST")
	r.HandleFunc("/plots/{plotId}", h.Get).Methods("GET")
	r.HandleFunc("/plots/{plotId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/plots/{plotId}/graphs", h.AddGraph).Methods("POST")
	r.HandleFunc("/plots/{plotId}/graphs/{graphId}", h.RemoveGraph).Methods("DELETE")
	r.HandleFunc("/plots/{plotId}/graphs/{graphId}/expression", h.SetExpression).Methods("PUT")
	r.HandleFunc("/plots/{plotId}/graphs/{graphId}/visibility", h.SetVisibility).Methods("PUT")
	r.HandleFunc("/plots/{plotId}/viewport", h.SetViewport).Methods("PUT")
	r.HandleFunc("/plots/{plotId}/pan", h.Pan).Methods("POST")
	r.HandleFunc("/plots/{plotId}/zoom", h.Zoom).Methods("POST")
	r.HandleFunc("/plots/{plotId}/render", h.Render).Methods("GET")
	r.HandleFunc("/plots/{plotId}/hit", h.HitTest).Methods("GET")
}

type createRequest struct {
	Name        string   `json:"name"`
	Expressions []string `json:"expressions"`
}

type addGraphRequest struct {
	Expression string `json:"expression"`
}

type expressionRequest struct {
	Expression string `json:"expression"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type zoomRequest struct {
	Factor  float64 `json:"factor"`
	AnchorX float64 `json:"anchorX"`
	AnchorY float64 `json:"anchorY"`
}

// rejection is the body of a 422: the input was refused and graph, when
// present, still shows the previous curve.
type rejection struct {
	Error string                  `json:"error"`
	Kind  string                  `json:"kind"`
	Graph *document.GraphDocument `json:"graph,omitempty"`
	Plot  *document.PlotDocument  `json:"plot,omitempty"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	doc, err := h.service.Create(r.Context(), req.Name, req.Expressions)
	if doc == nil {
		handleServiceError(w, err)
		return
	}
	if err != nil {
		slog.Info("plot created with rejected expressions", "plot", doc.ID, "error", err)
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	plots, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list plots failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, plots)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), mux.Vars(r)["plotId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	plotID := mux.Vars(r)["plotId"]
	if err := h.service.Delete(r.Context(), plotID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.changed(plotID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddGraph(w http.ResponseWriter, r *http.Request) {
	plotID := mux.Vars(r)["plotId"]

	var req addGraphRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	gd, err := h.service.AddGraph(r.Context(), plotID, req.Expression)
	if err != nil {
		if gd.ID != "" {
			h.changed(plotID)
			writeRejection(w, err, &gd, nil)
			return
		}
		handleServiceError(w, err)
		return
	}

	h.changed(plotID)
	writeJSON(w, http.StatusCreated, gd)
}

func (h *Handler) RemoveGraph(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.RemoveGraph(r.Context(), vars["plotId"], vars["graphId"]); err != nil {
		handleServiceError(w, err)
		return
	}

	h.changed(vars["plotId"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetExpression(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req expressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	gd, err := h.service.SetExpression(r.Context(), vars["plotId"], vars["graphId"], req.Expression)
	if err != nil {
		if gd.ID != "" {
			h.changed(vars["plotId"])
			writeRejection(w, err, &gd, nil)
			return
		}
		handleServiceError(w, err)
		return
	}

	h.changed(vars["plotId"])
	writeJSON(w, http.StatusOK, gd)
}

func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.service.SetVisible(r.Context(), vars["plotId"], vars["graphId"], req.Visible); err != nil {
		handleServiceError(w, err)
		return
	}

	h.changed(vars["plotId"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var vp engine.Viewport
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.viewportResult(w, r, func(plotID string) (*document.PlotDocument, error) {
		return h.service.SetViewport(r.Context(), plotID, vp)
	})
}

func (h *Handler) Pan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.viewportResult(w, r, func(plotID string) (*document.PlotDocument, error) {
		return h.service.Pan(r.Context(), plotID, req.DX, req.DY)
	})
}

func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.viewportResult(w, r, func(plotID string) (*document.PlotDocument, error) {
		return h.service.Zoom(r.Context(), plotID, req.Factor, req.AnchorX, req.AnchorY)
	})
}

// viewportResult answers a geometry change. Graphs that could not be
// resampled keep their curve; the response is then a 422 carrying the
// updated document.
func (h *Handler) viewportResult(w http.ResponseWriter, r *http.Request, fn func(plotID string) (*document.PlotDocument, error)) {
	plotID := mux.Vars(r)["plotId"]
	doc, err := fn(plotID)
	if err != nil {
		if doc != nil && !errors.Is(err, engine.ErrInvalidViewport) {
			h.changed(plotID)
			writeRejection(w, err, nil, doc)
			return
		}
		handleServiceError(w, err)
		return
	}

	h.changed(plotID)
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	cmds, err := h.service.Render(r.Context(), mux.Vars(r)["plotId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cmds)
}

func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	px, errX := strconv.ParseFloat(q.Get("x"), 64)
	py, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y are required"})
		return
	}

	hit, err := h.service.HitTest(r.Context(), mux.Vars(r)["plotId"], px, py)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hit)
}

type evaluateRequest struct {
	Expression string  `json:"expression"`
	X          float64 `json:"x"`
}

// Evaluate computes a single value without touching any plot.
func Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	v, err := expr.Evaluate(req.Expression, req.X)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"kind":  expr.KindOf(err).String(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"value": jsonNumber(v)})
}

// jsonNumber returns v, or its name when JSON cannot represent it.
func jsonNumber(v float64) interface{} {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return v
}

func (h *Handler) changed(plotID string) {
	if h.onChange != nil {
		h.onChange(plotID)
	}
}

func writeRejection(w http.ResponseWriter, err error, gd *document.GraphDocument, doc *document.PlotDocument) {
	writeJSON(w, http.StatusUnprocessableEntity, rejection{
		Error: err.Error(),
		Kind:  document.ErrorKind(err),
		Graph: gd,
		Plot:  doc,
	})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, engine.ErrGraphNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "graph not found"})
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrNameLength):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidViewport):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "kind": document.ErrorKind(err)})
	case errors.Is(err, engine.ErrTooManyGraphs):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "kind": document.ErrorKind(err)})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
