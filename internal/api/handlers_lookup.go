package api

import (
	"fmt"
	"net/http"
)

// typeCategories serves GET /transaction-types/{id}/categories, the feed
// for the dependent category select. Results are cached; any reference
// write purges the cache.
func (s *Server) typeCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	key := fmt.Sprintf("tt:%d", id)
	if items, ok := s.lookupCache.Get(key); ok {
		writeJSON(w, http.StatusOK, items)
		return
	}

	cats, err := s.refs.CategoriesOf(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]nameItem, len(cats))
	for i, c := range cats {
		items[i] = nameItem{ID: c.ID, Name: c.Name}
	}
	s.lookupCache.Set(key, items)
	writeJSON(w, http.StatusOK, items)
}

// categorySubcategories serves GET /categories/{id}/subcategories.
func (s *Server) categorySubcategories(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	key := fmt.Sprintf("cat:%d", id)
	if items, ok := s.lookupCache.Get(key); ok {
		writeJSON(w, http.StatusOK, items)
		return
	}

	subs, err := s.refs.SubcategoriesOf(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]nameItem, len(subs))
	for i, sc := range subs {
		items[i] = nameItem{ID: sc.ID, Name: sc.Name}
	}
	s.lookupCache.Set(key, items)
	writeJSON(w, http.StatusOK, items)
}
