// Package authz holds the single access-control decision point for the API.
// Every handler asks Decide instead of re-implementing ownership checks; the
// evaluator is a pure function and safe for concurrent use.
package authz

// Role of a principal.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// Action on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceKind is the type of resource an action targets.
type ResourceKind string

const (
	KindWorkspace ResourceKind = "workspace"
	KindDataset   ResourceKind = "dataset"
)

// Effect of a decision.
type Effect string

const (
	Allow Effect = "ALLOW"
	Deny  Effect = "DENY"
)

// Reason is the machine-readable code attached to every denial. Each denial
// maps to exactly one reason so that tests and audit logs can attribute it.
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonUnauthenticated        Reason = "UNAUTHENTICATED"
	ReasonMalformedRequest       Reason = "MALFORMED_REQUEST"
	ReasonForbiddenImpersonation Reason = "FORBIDDEN_IMPERSONATION"
	ReasonForbiddenNotOwner      Reason = "FORBIDDEN_NOT_OWNER"
	ReasonForbiddenReadOnly      Reason = "FORBIDDEN_READ_ONLY"
	ReasonForbiddenDefault       Reason = "FORBIDDEN_DEFAULT"
)

// Principal is the actor making a request.
type Principal struct {
	UserID        string
	Role          Role
	Authenticated bool
}

// Resource describes the target of an action, including its ownership
// linkage. For ActionCreate the target does not exist yet: OwnerID then
// carries the intended owner of the new workspace, or the owner of the
// parent workspace for a new dataset. For datasets OwnerID is always the
// parent workspace's owner.
type Resource struct {
	Kind    ResourceKind
	ID      string
	OwnerID string
}

// Decision is the evaluator's verdict.
type Decision struct {
	Effect Effect
	Reason Reason
}

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool { return d.Effect == Allow }

func allow() Decision             { return Decision{Effect: Allow, Reason: ReasonNone} }
func deny(reason Reason) Decision { return Decision{Effect: Deny, Reason: reason} }

func validAction(a Action) bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

func validKind(k ResourceKind) bool {
	return k == KindWorkspace || k == KindDataset
}

// Decide evaluates the policy table and returns ALLOW or DENY with a reason.
// It never panics on a well-formed request; malformed input yields a
// MALFORMED_REQUEST denial that callers surface as 422, never 403.
//
// Precedence, first match wins:
//
//  1. unauthenticated principal        -> DENY UNAUTHENTICATED
//  2. malformed action/resource        -> DENY MALFORMED_REQUEST
//  3. admin                            -> ALLOW everything
//  4. unknown role                     -> DENY FORBIDDEN_DEFAULT
//  5. viewer + create/update/delete    -> DENY FORBIDDEN_READ_ONLY
//  6. create workspace for other user  -> DENY FORBIDDEN_IMPERSONATION
//  7. anything else: owner only        -> ALLOW / DENY FORBIDDEN_NOT_OWNER
func Decide(p Principal, action Action, res *Resource) Decision {
	if !p.Authenticated || p.UserID == "" {
		return deny(ReasonUnauthenticated)
	}

	if !validAction(action) || res == nil || !validKind(res.Kind) || res.OwnerID == "" {
		return deny(ReasonMalformedRequest)
	}

	switch p.Role {
	case RoleAdmin:
		// admin is a superuser across all workspaces and datasets
		return allow()
	case RoleUser, RoleViewer:
	default:
		return deny(ReasonForbiddenDefault)
	}

	// viewer is read-only regardless of ownership; this gates the
	// ownership rules below, both must pass
	if p.Role == RoleViewer && action != ActionRead {
		return deny(ReasonForbiddenReadOnly)
	}

	if action == ActionCreate && res.Kind == KindWorkspace {
		// a non-admin may never create a resource on behalf of another user
		if res.OwnerID != p.UserID {
			return deny(ReasonForbiddenImpersonation)
		}
		return allow()
	}

	if res.OwnerID != p.UserID {
		return deny(ReasonForbiddenNotOwner)
	}
	return allow()
}
