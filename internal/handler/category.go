package handler

import "net/http"

// ListCategories handles GET /categories?prefix=.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	cats, err := s.Categories.Suggest(r.Context(), owner, r.URL.Query().Get("prefix"))
	if err != nil {
		s.writeServiceError(w, r, err, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
