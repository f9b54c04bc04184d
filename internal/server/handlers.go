package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/sopgraph/pkg/buildinfo"
	"github.com/opsdeck/sopgraph/pkg/cache"
	"github.com/opsdeck/sopgraph/pkg/editor"
	apperrors "github.com/opsdeck/sopgraph/pkg/errors"
	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/graph/layout"
	"github.com/opsdeck/sopgraph/pkg/observability"
	"github.com/opsdeck/sopgraph/pkg/render"
	"github.com/opsdeck/sopgraph/pkg/step"
	"github.com/opsdeck/sopgraph/pkg/store"
)

// saveRequest is the PUT body: the display name plus the full tree.
type saveRequest struct {
	Name string          `json:"name"`
	Tree json.RawMessage `json:"tree"`
}

// procedureResponse pairs a stored procedure with its derived canvas graph.
type procedureResponse struct {
	Procedure *store.Procedure `json:"procedure"`
	Graph     graph.Snapshot   `json:"graph"`
}

// procedureSummary is one row of the procedure list.
type procedureSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Steps     int       `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// validateResponse is the verdict of the validate endpoint.
type validateResponse struct {
	Valid      bool     `json:"valid"`
	Steps      int      `json:"steps,omitempty"`
	Step       string   `json:"step,omitempty"`
	Error      string   `json:"error,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleListProcedures(w http.ResponseWriter, r *http.Request) {
	procs, err := s.deps.Store.List(r.Context())
	if err != nil {
		s.deps.Logger.Error("list procedures", "err", err)
		writeError(w, http.StatusInternalServerError, "list procedures")
		return
	}

	summaries := make([]procedureSummary, 0, len(procs))
	for _, p := range procs {
		summaries = append(summaries, procedureSummary{
			ID:        p.ID,
			Name:      p.Name,
			Steps:     p.Tree.Count(),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProcedure(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProcedure(w, r)
	if !ok {
		return
	}
	s.writeProcedure(w, http.StatusOK, p)
}

func (s *Server) handleSaveProcedure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateProcedureID(id); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.UserMessage(err))
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}
	if err := apperrors.ValidateProcedureName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.UserMessage(err))
		return
	}

	if err := step.ValidateWire(req.Tree); err != nil {
		var serr *step.SchemaError
		if errors.As(err, &serr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":      "tree payload failed schema validation",
				"violations": serr.Violations,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tree, err := step.Unmarshal(req.Tree)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.checkTree(w, &tree) {
		return
	}

	p := &store.Procedure{ID: id, Name: req.Name, Tree: tree}
	if existing, err := s.deps.Store.Get(r.Context(), id); err == nil {
		p.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, store.ErrNotFound) {
		s.deps.Logger.Error("load procedure", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "load procedure")
		return
	}

	if err := s.deps.Store.Put(r.Context(), p); err != nil {
		s.deps.Logger.Error("save procedure", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "save procedure")
		return
	}
	s.deps.Logger.Info("procedure saved", "id", id, "steps", p.Tree.Count())
	s.writeProcedure(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProcedure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	switch err := s.deps.Store.Delete(r.Context(), id); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "procedure not found")
	default:
		s.deps.Logger.Error("delete procedure", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "delete procedure")
	}
}

// handleDeleteNode removes one step from a stored procedure. The root node
// is protected: deleting it answers 409 rather than mutating the tree.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProcedure(w, r)
	if !ok {
		return
	}

	sess, err := editor.Open(p.Tree, s.deps.Logger)
	if err != nil {
		s.deps.Logger.Error("open procedure", "id", p.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "open procedure")
		return
	}

	nodeID := chi.URLParam(r, "node")
	node, found := sess.Graph().Node(nodeID)
	if !found {
		writeError(w, http.StatusNotFound, "unknown node "+nodeID)
		return
	}
	if !node.CanDelete() {
		writeError(w, http.StatusConflict, "the entry step cannot be deleted")
		return
	}

	if err := sess.DeleteNode(nodeID); err != nil {
		writeError(w, http.StatusInternalServerError, "delete node")
		return
	}
	tree, err := sess.Stage()
	if err != nil {
		s.writeStageError(w, err)
		return
	}

	p.Tree = tree
	if err := s.deps.Store.Put(r.Context(), p); err != nil {
		s.deps.Logger.Error("save procedure", "id", p.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "save procedure")
		return
	}
	s.deps.Logger.Info("node deleted", "id", p.ID, "node", nodeID)
	s.writeProcedure(w, http.StatusOK, p)
}

func (s *Server) handleConvertGraph(w http.ResponseWriter, r *http.Request) {
	tree, ok := decodeTree(w, r)
	if !ok {
		return
	}
	g, err := graph.FromStep(tree)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

func (s *Server) handleConvertTree(w http.ResponseWriter, r *http.Request) {
	g, ok := decodeGraph(w, r)
	if !ok {
		return
	}
	tree, err := g.ToStep()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, ok := decodeGraph(w, r)
	if !ok {
		return
	}
	layout.Arrange(g)
	writeJSON(w, http.StatusOK, g.Snapshot())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}

	if err := step.ValidateWire(raw); err != nil {
		var serr *step.SchemaError
		if errors.As(err, &serr) {
			writeJSON(w, http.StatusOK, validateResponse{
				Valid:      false,
				Error:      "tree payload failed schema validation",
				Violations: serr.Violations,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tree, err := step.Unmarshal(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := step.Validate(&tree); err != nil {
		resp := validateResponse{Valid: false, Error: err.Error()}
		var verr *step.ValidationError
		if errors.As(err, &verr) {
			resp.Step = verr.Label
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true, Steps: tree.Count()})
}

// handleRenderProcedure serves a procedure diagram. SVG artifacts are
// cached by tree hash and render options; DOT assembly is cheap and served
// uncached.
func (s *Server) handleRenderProcedure(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProcedure(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	opts := render.Options{
		Pinned:   queryBool(r, "pinned"),
		Detailed: queryBool(r, "detailed"),
	}

	switch format {
	case "dot":
		g, err := graph.FromStep(p.Tree)
		if err != nil {
			s.deps.Logger.Error("expand procedure", "id", p.ID, "err", err)
			writeError(w, http.StatusInternalServerError, "expand procedure")
			return
		}
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write([]byte(render.ToDOT(g, opts)))

	case "svg":
		treeData, err := step.Marshal(p.Tree)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "encode procedure")
			return
		}
		key := s.deps.Keyer.ArtifactKey(cache.Hash(treeData), cache.ArtifactKeyOpts{
			Format:   "svg",
			Pinned:   opts.Pinned,
			Detailed: opts.Detailed,
		})

		if data, hit, err := s.deps.Cache.Get(r.Context(), key); err != nil {
			s.deps.Logger.Warn("artifact cache get", "err", err)
		} else if hit {
			w.Header().Set("Content-Type", "image/svg+xml")
			w.Write(data)
			return
		}

		g, err := graph.FromStep(p.Tree)
		if err != nil {
			s.deps.Logger.Error("expand procedure", "id", p.ID, "err", err)
			writeError(w, http.StatusInternalServerError, "expand procedure")
			return
		}
		observability.Render().OnRenderStart(r.Context(), "svg", g.NodeCount())
		start := time.Now()
		svg, err := render.RenderSVG(render.ToDOT(g, opts))
		observability.Render().OnRenderComplete(r.Context(), "svg", time.Since(start), err)
		if err != nil {
			s.deps.Logger.Error("render procedure", "id", p.ID, "err", err)
			writeError(w, http.StatusInternalServerError, "render procedure")
			return
		}
		if err := s.deps.Cache.Set(r.Context(), key, svg, cache.TTLArtifact); err != nil {
			s.deps.Logger.Warn("artifact cache set", "err", err)
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)

	default:
		writeError(w, http.StatusBadRequest, "unknown format "+format)
	}
}

// loadProcedure fetches the procedure named in the route, writing the
// error response itself when the fetch fails.
func (s *Server) loadProcedure(w http.ResponseWriter, r *http.Request) (*store.Procedure, bool) {
	id := chi.URLParam(r, "id")
	p, err := s.deps.Store.Get(r.Context(), id)
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "procedure not found")
	case apperrors.Is(err, apperrors.ErrCodeInvalidID):
		writeError(w, http.StatusBadRequest, apperrors.UserMessage(err))
	default:
		s.deps.Logger.Error("load procedure", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "load procedure")
	}
	return nil, false
}

// writeProcedure responds with the procedure and its derived canvas graph.
func (s *Server) writeProcedure(w http.ResponseWriter, status int, p *store.Procedure) {
	g, err := graph.FromStep(p.Tree)
	if err != nil {
		s.deps.Logger.Error("expand procedure", "id", p.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "expand procedure")
		return
	}
	writeJSON(w, status, procedureResponse{Procedure: p, Graph: g.Snapshot()})
}

// checkTree runs the pre-save validator, answering 422 with the failing
// step's label on error.
func (s *Server) checkTree(w http.ResponseWriter, tree *step.Step) bool {
	if err := step.Validate(tree); err != nil {
		s.writeStageError(w, err)
		return false
	}
	return true
}

func (s *Server) writeStageError(w http.ResponseWriter, err error) {
	var verr *step.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": verr.Error(),
			"step":  verr.Label,
		})
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

// decodeTree decodes a tree body, answering 400 on failure.
func decodeTree(w http.ResponseWriter, r *http.Request) (step.Step, bool) {
	tree, err := step.Read(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return step.Step{}, false
	}
	return tree, true
}

// decodeGraph decodes a snapshot body, answering 400 on failure.
func decodeGraph(w http.ResponseWriter, r *http.Request) (*graph.Graph, bool) {
	var snap graph.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "decode graph: "+err.Error())
		return nil, false
	}
	g, err := graph.FromSnapshot(snap)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return g, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryBool reads a boolean query parameter. Absent means false.
func queryBool(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}
