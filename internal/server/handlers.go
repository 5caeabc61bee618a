package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orbit/pkg/cache"
	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/explorer"
	"github.com/matzehuels/orbit/pkg/layout"
	"github.com/matzehuels/orbit/pkg/observability"
	"github.com/matzehuels/orbit/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// layoutRequest is a stateless layout computation.
type layoutRequest struct {
	Center string       `json:"center"`
	Items  []layoutItem `json:"items"`
}

type layoutItem struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Seed *layout.Point `json:"seed,omitempty"`
}

type layoutResponse struct {
	Placements []layout.Placed `json:"placements"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding layout request"))
		return
	}
	if req.Center == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "center is required"))
		return
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "hashing items"))
		return
	}
	key := s.keyer.LayoutKey(req.Center, cache.Hash(itemsJSON), cache.LayoutKeyOpts{
		Iterations:   s.layout.Iterations,
		PairMargin:   s.layout.PairMargin,
		CenterMargin: s.layout.CenterMargin,
		Pull:         s.layout.Pull,
		Seed:         s.layout.Seed,
	})

	ctx := r.Context()
	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "layout")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	items := make([]layout.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = layout.Item{ID: it.ID, Name: it.Name, Seed: it.Seed}
	}
	placed := layout.Place(req.Center, items, s.layout)

	body, err := json.Marshal(layoutResponse{Placements: placed})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encoding layout response"))
		return
	}
	if err := s.cache.Set(ctx, key, body, cache.TTLLayout); err != nil {
		s.logger.Warn("caching layout failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "layout", len(body))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// createSnapshotRequest starts a fresh exploration snapshot.
type createSnapshotRequest struct {
	Name string              `json:"name"`
	View *explorer.ViewState `json:"view,omitempty"`
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req createSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding snapshot request"))
		return
	}
	if req.Name == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "name is required"))
		return
	}

	snap := &store.Snapshot{
		Name: req.Name,
		Tree: domain.NewNode(req.Name, domain.SourceUser),
	}
	if req.View != nil {
		snap.View = *req.View
	} else {
		snap.View = explorer.ViewState{Viewport: explorer.DefaultViewport()}
	}

	if err := s.saveSnapshot(r.Context(), snap); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "storing snapshot"))
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	metas, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "listing snapshots"))
		return
	}
	if metas == nil {
		metas = []store.Meta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = s.cache.Delete(r.Context(), s.keyer.SnapshotKey(id))
	err := s.store.Delete(r.Context(), id)
	if err == store.ErrNotFound {
		writeError(w, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id))
		return
	}
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "deleting snapshot"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mergeRequest applies resolved child names to a node in a snapshot tree.
// This is the merge half of the fetch contract: a resolver (wherever it
// runs) produced names, and the server folds them into the stored tree.
type mergeRequest struct {
	Path  []string `json:"path"`
	Names []string `json:"names"`
}

// handleExpand materializes the node at path with the given names.
func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.merge(w, r, false)
}

// handleAppend extends an already-materialized node with new names.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	s.merge(w, r, true)
}

func (s *Server) merge(w http.ResponseWriter, r *http.Request, extend bool) {
	snap, err := s.loadSnapshot(w, r)
	if err != nil {
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding merge request"))
		return
	}
	path := domain.Path(req.Path)
	node, ok := domain.Find(snap.Tree, path)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeInvalidPath, "path %q does not resolve", path.String()))
		return
	}

	var children []*domain.Node
	if extend {
		if !node.Children.Resolved() {
			writeError(w, errors.New(errors.ErrCodeInvalidTree, "node %q has no materialized children to extend", path.String()))
			return
		}
		existing := node.Children.Nodes()
		fresh := domain.AppendUnique(existing, req.Names, domain.SourceGenerated)
		children = make([]*domain.Node, 0, len(existing)+len(fresh))
		children = append(children, existing...)
		children = append(children, fresh...)
	} else {
		children = domain.AppendUnique(nil, req.Names, domain.SourceGenerated)
	}

	snap.Tree = domain.ReplaceChildren(snap.Tree, path, children)
	if err := s.saveSnapshot(r.Context(), snap); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "storing snapshot"))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// snapshotLayoutRequest lays out the children of a node in a snapshot and
// persists the computed positions.
type snapshotLayoutRequest struct {
	Path []string `json:"path"`
}

func (s *Server) handleSnapshotLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(w, r)
	if err != nil {
		return
	}

	var req snapshotLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding layout request"))
		return
	}
	path := domain.Path(req.Path)
	node, ok := domain.Find(snap.Tree, path)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeInvalidPath, "path %q does not resolve", path.String()))
		return
	}
	if !node.Children.Resolved() {
		writeError(w, errors.New(errors.ErrCodeInvalidTree, "node %q is not materialized", path.String()))
		return
	}

	children := node.Children.Nodes()
	items := make([]layout.Item, len(children))
	for i, c := range children {
		items[i] = layout.Item{ID: c.ID, Name: c.Name}
		if c.Position != nil {
			items[i].Seed = &layout.Point{X: c.Position.X, Y: c.Position.Y}
		}
	}
	placed := layout.Place(node.Name, items, s.layout)

	updated := make([]*domain.Node, len(children))
	for i, c := range children {
		clone := domain.Clone(c)
		clone.Position = &domain.Position{X: placed[i].X, Y: placed[i].Y}
		updated[i] = clone
	}
	snap.Tree = domain.ReplaceChildren(snap.Tree, path, updated)
	if err := s.saveSnapshot(r.Context(), snap); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "storing snapshot"))
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Placements: placed})
}

// loadSnapshot fetches the snapshot named in the route, reading through
// the cache and writing the error response itself so handlers can just
// return.
func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, error) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	key := s.keyer.SnapshotKey(id)

	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var snap store.Snapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			observability.Cache().OnCacheHit(ctx, "snapshot")
			return &snap, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "snapshot")

	snap, err := s.store.Get(ctx, id)
	if err == store.ErrNotFound {
		err = errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id)
		writeError(w, err)
		return nil, err
	}
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "loading snapshot")
		writeError(w, err)
		return nil, err
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.TTLSnapshot); err == nil {
			observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
		}
	}
	return snap, nil
}

// saveSnapshot persists snap and drops any cached copy so the next read
// observes the update.
func (s *Server) saveSnapshot(ctx context.Context, snap *store.Snapshot) error {
	if err := s.store.Put(ctx, snap); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.keyer.SnapshotKey(snap.ID))
	return nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidTree:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	case errors.ErrCodeStaleResult:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
