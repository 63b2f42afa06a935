package handler

import "net/http"

// GetLive handles GET /trips/{tripId}/live by upgrading to a WebSocket that
// streams trip and expense snapshots.
func (s *Server) GetLive(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	if err := s.Live.Serve(w, r, owner, tripID); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
	}
}
