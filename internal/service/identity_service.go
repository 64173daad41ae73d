package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/cpd/internal/audit"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/reception"
)

const ActionIdentify = "key.identify"

type IdentifyRequest struct {
	// Key is the raw key presented by the client
	Key string
}

type IdentifyResponse struct {
	Identity core.ClientIdentity
}

// IdentityService resolves keys on behalf of the transport layer.
// It adds auditing, logging and the accept policy around the resolver.
type IdentityService struct {
	resolver *reception.Resolver
	policy   *AcceptPolicy
	auditor  core.Auditor
}

func NewIdentityService(
	resolver *reception.Resolver,
	policy *AcceptPolicy,
	auditor core.Auditor,
) *IdentityService {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	return &IdentityService{
		resolver: resolver,
		policy:   policy,
		auditor:  auditor,
	}
}

// Sites returns the sites keys can currently be resolved for.
func (s *IdentityService) Sites() []core.SiteCode {
	return s.resolver.Sites()
}

// Identify resolves the key. Failures are returned as *HTTPError wrapping ErrRejected or ErrNotAccepted.
func (s *IdentityService) Identify(ctx context.Context, req IdentifyRequest) (*IdentifyResponse, error) {
	logger := log.Ctx(ctx)

	auditEntry := core.AuditEntry{
		ID:     core.CorrelationID(ctx),
		Time:   time.Now(),
		Action: ActionIdentify,
		Key:    audit.FingerprintKey(req.Key),
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for key identification")
		}
	}()

	identity, err := s.resolver.Identify(req.Key)
	if err != nil {
		auditEntry.Error = "key rejected"
		auditEntry.Stacktrace = rejectCause(err).Error()
		logger.Warn().Str("reason", rejectReason(err)).Msg("key rejected")
		return nil, httpError(http.StatusUnauthorized, ErrRejected)
	}
	auditEntry.Identity = audit.TrimIdentity(identity)

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("site", identity.Site.Prefix()).Str("external_id", auditEntry.Identity.ExternalID)
	})

	accepted, err := s.policy.Accepts(identity)
	if err != nil {
		auditEntry.Error = "accept policy error"
		auditEntry.Stacktrace = err.Error()
		logger.Error().Err(err).Msg("accept policy error")
		return nil, httpError(http.StatusInternalServerError, errors.New("internal policy error"))
	}
	if !accepted {
		auditEntry.Error = "identity not accepted"
		logger.Warn().Msg("identity not accepted by site policy")
		return nil, httpError(http.StatusForbidden, ErrNotAccepted)
	}

	auditEntry.Success = true
	logger.Debug().Msg("key identified")

	return &IdentifyResponse{Identity: identity}, nil
}

// rejectCause strips the key from resolver errors so audits only keep the redacted key.
func rejectCause(err error) error {
	var invalid *core.InvalidKeyError
	if errors.As(err, &invalid) && invalid.Cause != nil {
		return invalid.Cause
	}
	return err
}

// rejectReason names the failed check for server-side logs only.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, core.ErrMalformedKey):
		return "malformed_key"
	case errors.Is(err, core.ErrUnknownSite):
		return "unknown_site"
	case errors.Is(err, core.ErrUnregisteredSite):
		return "unregistered_site"
	case errors.Is(err, core.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, core.ErrSignatureMismatch):
		return "signature_mismatch"
	default:
		return "other"
	}
}
