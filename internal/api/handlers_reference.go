package api

import (
	"encoding/json"
	"net/http"

	"cashflow/internal/core"
)

type namePayload struct {
	Name string `json:"name"`
}

type transactionTypePayload struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

type categoryPayload struct {
	TransactionType int64  `json:"transaction_type"`
	Name            string `json:"name"`
}

type subcategoryPayload struct {
	Category int64  `json:"category"`
	Name     string `json:"name"`
}

type statusResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type transactionTypeResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

type categoryResponse struct {
	ID              int64  `json:"id"`
	TransactionType int64  `json:"transaction_type"`
	Name            string `json:"name"`
}

type subcategoryResponse struct {
	ID       int64  `json:"id"`
	Category int64  `json:"category"`
	Name     string `json:"name"`
}

func toStatusResponse(st core.Status) statusResponse {
	return statusResponse{ID: st.ID, Name: st.Name}
}

func toTransactionTypeResponse(tt core.TransactionType) transactionTypeResponse {
	return transactionTypeResponse{ID: tt.ID, Name: tt.Name, Direction: string(tt.Direction)}
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, TransactionType: c.TransactionTypeID, Name: c.Name}
}

func toSubcategoryResponse(sc core.Subcategory) subcategoryResponse {
	return subcategoryResponse{ID: sc.ID, Category: sc.CategoryID, Name: sc.Name}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return false
	}
	return true
}

func requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid id")
	}
	return id, ok
}

// Statuses.

func (s *Server) listStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.refs.ListStatuses(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]statusResponse, len(statuses))
	for i, st := range statuses {
		out[i] = toStatusResponse(st)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createStatus(w http.ResponseWriter, r *http.Request) {
	var in namePayload
	if !decodeBody(w, r, &in) {
		return
	}
	st, err := s.refs.CreateStatus(r.Context(), in.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusCreated, toStatusResponse(st))
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	st, err := s.refs.GetStatus(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(st))
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in namePayload
	if !decodeBody(w, r, &in) {
		return
	}
	st, err := s.refs.UpdateStatus(r.Context(), id, in.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusOK, toStatusResponse(st))
}

func (s *Server) deleteStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.refs.DeleteStatus(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

// Transaction types.

func (s *Server) listTransactionTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.refs.ListTransactionTypes(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]transactionTypeResponse, len(types))
	for i, tt := range types {
		out[i] = toTransactionTypeResponse(tt)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTransactionType(w http.ResponseWriter, r *http.Request) {
	var in transactionTypePayload
	if !decodeBody(w, r, &in) {
		return
	}
	tt, err := s.refs.CreateTransactionType(r.Context(), in.Name, core.Direction(in.Direction))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusCreated, toTransactionTypeResponse(tt))
}

func (s *Server) getTransactionType(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	tt, err := s.refs.GetTransactionType(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionTypeResponse(tt))
}

func (s *Server) updateTransactionType(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in transactionTypePayload
	if !decodeBody(w, r, &in) {
		return
	}
	tt, err := s.refs.UpdateTransactionType(r.Context(), id, in.Name, core.Direction(in.Direction))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusOK, toTransactionTypeResponse(tt))
}

func (s *Server) deleteTransactionType(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.refs.DeleteTransactionType(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

// Categories.

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.refs.ListCategories(r.Context(), queryID(r, "transaction_type"), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryPayload
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.refs.CreateCategory(r.Context(), in.TransactionType, in.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	c, err := s.refs.GetCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in categoryPayload
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.refs.UpdateCategory(r.Context(), id, in.TransactionType, in.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.refs.DeleteCategory(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

// Subcategories.

func (s *Server) listSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := s.refs.ListSubcategories(r.Context(), queryID(r, "category"), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]subcategoryResponse, len(subs))
	for i, sc := range subs {
		out[i] = toSubcategoryResponse(sc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createSubcategory(w http.ResponseWriter, r *http.Request) {
	var in subcategoryPayload
	if !decodeBody(w, r, &in) {
		return
	}
	sc, err := s.refs.CreateSubcategory(r.Context(), in.Category, in.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusCreated, toSubcategoryResponse(sc))
}

func (s *Server) getSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	sc, err := s.refs.GetSubcategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubcategoryResponse(sc))
}

func (s *Server) updateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in subcategoryPayload
	if !decodeBody(w, r, &in) {
		return
	}
	sc, err := s.refs.UpdateSubcategory(r.Context(), id, in.Category, in.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	writeJSON(w, http.StatusOK, toSubcategoryResponse(sc))
}

func (s *Server) deleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.refs.DeleteSubcategory(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.lookupCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
