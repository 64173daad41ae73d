package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/icanhazcpd"

	IdentifyRoute = "/v1/identify"
	SitesRoute    = "/v1/sites"

	AdminParent     = "/v1/admin/"
	ListAuditsRoute = AdminParent + "audits"
)
