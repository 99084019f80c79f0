package server

import "net/http"

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	skip, limit := paging(r)
	logs, err := s.activity.List(r.Context(), skip, limit)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, listBody(logs))
}
