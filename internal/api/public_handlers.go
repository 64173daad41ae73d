package api

import (
	"net/http"

	"github.com/darmiel/cpd/internal/api/presenter"
	"github.com/darmiel/cpd/internal/buildinfo"
	"github.com/darmiel/cpd/internal/core"
)

// AboutResponse describes the running service and the sites it resolves keys for.
type AboutResponse struct {
	buildinfo.Info
	Sites []core.SiteCode `json:"sites"`
}

// handleHealth reports ready once at least one site is bound. A server without sites rejects every key.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.identityService.Sites()) == 0 {
		presenter.Error(w, r, presenter.CodeNotReady, "no sites bound", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, AboutResponse{
		Info:  buildinfo.GetBuildInfo(),
		Sites: s.identityService.Sites(),
	}, http.StatusOK)
}
