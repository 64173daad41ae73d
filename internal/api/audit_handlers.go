package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/cpd/internal/api/presenter"
	"github.com/darmiel/cpd/internal/audit"
	"github.com/darmiel/cpd/internal/core"
)

const defaultAuditLimit = 50

// auditFilter holds the query parameters of the audit listing. Empty fields match everything.
type auditFilter struct {
	CorrelationID string
	Site          string
	ExternalID    string
	Limit         int
}

func parseAuditFilter(q url.Values) (auditFilter, error) {
	filter := auditFilter{
		CorrelationID: q.Get("correlation_id"),
		Site:          q.Get("site"),
		ExternalID:    q.Get("external_id"),
		Limit:         defaultAuditLimit,
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, err
		}
		if v < 0 {
			return filter, strconv.ErrRange
		}
		filter.Limit = v
	}
	return filter, nil
}

func (f auditFilter) empty() bool {
	return f.CorrelationID == "" && f.Site == "" && f.ExternalID == ""
}

func (f auditFilter) matches(entry core.AuditEntry) bool {
	switch {
	case f.CorrelationID != "" && entry.ID != f.CorrelationID:
		return false
	case f.Site != "" && entrySite(entry) != f.Site:
		return false
	case f.ExternalID != "" && (entry.Identity == nil || entry.Identity.ExternalID != f.ExternalID):
		return false
	}
	return true
}

// entrySite returns the site of the resolved identity, or the prefix of the rejected key.
func entrySite(entry core.AuditEntry) string {
	if entry.Identity != nil {
		return entry.Identity.Site.Prefix()
	}
	return audit.KeySite(entry.Key)
}

// handleAdminAudit lists audit entries, newest last.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	reader, ok := s.auditor.(core.AuditReader)
	if !ok {
		presenter.Error(w, r, presenter.CodeNotImplemented, "audit log is not queryable", http.StatusNotImplemented)
		return
	}

	filter, err := parseAuditFilter(r.URL.Query())
	if err != nil {
		logger.Warn().Err(err).Str("limit", r.URL.Query().Get("limit")).Msg("invalid limit parameter")
		presenter.Error(w, r, presenter.CodeBadRequest, "invalid limit parameter", http.StatusBadRequest)
		return
	}

	var entries []core.AuditEntry
	if filter.empty() {
		entries, err = reader.GetRecent(filter.Limit)
	} else {
		entries, err = reader.Find(filter.matches, filter.Limit)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, presenter.CodeInternal, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}
