package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/cpd/internal/api/presenter"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/service"
)

// maxPayloadBytes bounds request bodies; keys are short.
const maxPayloadBytes = 16 << 10

type IdentifyPayload struct {
	// Key is the key as presented by the client, forwarded verbatim.
	Key string `json:"key"`
}

type SitesResponse struct {
	Sites []core.SiteCode `json:"sites"`
}

func DecodePayload(r *http.Request, dest any, allowEmpty bool) error {
	switch r.Header.Get("Content-Type") {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			if !errors.Is(err, io.EOF) || !allowEmpty {
				return err
			}
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
		return nil
	default:
		return errors.New("unsupported content type")
	}
}

// handleIdentify resolves a client key into an identity.
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload IdentifyPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode identify request payload")
		presenter.Error(w, r, presenter.CodeBadRequest, "invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Key == "" {
		presenter.Error(w, r, presenter.CodeBadRequest, "missing key", http.StatusBadRequest)
		return
	}

	result, err := s.identityService.Identify(ctx, service.IdentifyRequest{Key: payload.Key})
	if err != nil {
		presenter.Err(w, r, err)
		return
	}

	presenter.JSON(w, r, result.Identity, http.StatusOK)
}

// handleSites lists the sites keys can be resolved for.
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, SitesResponse{Sites: s.identityService.Sites()}, http.StatusOK)
}
