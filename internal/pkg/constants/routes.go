package constants

// Static route constants
const (
	SponsorRoute          = "/sponsor"
	CheckoutRoute         = "/checkout"
	ProcessorReturnRoute  = "/settlement/processor/return"
	ProcessorRefreshRoute = "/settlement/processor/refresh"
	AdminTeamsRoute       = "/admin/teams"
)
