package api

import (
	"net/http"

	"github.com/darmiel/cpd/internal/api/middleware"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/service"
)

type Server struct {
	identityService *service.IdentityService
	auditor         core.Auditor
}

func NewServer(identityService *service.IdentityService, auditor core.Auditor) *Server {
	return &Server{
		identityService: identityService,
		auditor:         auditor,
	}
}

// Routes returns the HTTP handler of the server.
// Admin routes are only mounted if adminSigningKey is not empty.
func (s *Server) Routes(adminSigningKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	mux.HandleFunc("POST "+IdentifyRoute, s.handleIdentify)
	mux.HandleFunc("GET "+SitesRoute, s.handleSites)

	// admin routes
	if len(adminSigningKey) > 0 {
		adminMux := http.NewServeMux()
		adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
		mux.Handle(AdminParent, middleware.AdminAuth(adminSigningKey)(adminMux))
	}

	return middleware.CorrelationIDMiddleware(
		middleware.RequestLogger(HealthCheckRoute)(
			middleware.Recover(
				mux)))
}
