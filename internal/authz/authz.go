// Package authz defines the closed set of capabilities the engine understands.
// Capabilities are resolved once per request from RBAC policy and passed
// explicitly into services, instead of re-checking role strings at call sites.
package authz

type Context struct {
	ActorID           string
	CanReviewAbsence  bool
	CanRunSweeps      bool
	CanManageHolidays bool
	CanReadTeamReport bool
}

// System is the ambient authorization used by scheduler sweeps and
// leave-approval side effects. It is never handed to request handlers.
func System() Context {
	return Context{
		ActorID:          "system",
		CanReviewAbsence: true,
		CanRunSweeps:     true,
	}
}
