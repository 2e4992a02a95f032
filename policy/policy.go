// Package policy decides which principal may perform which action. It has no
// dependencies beyond the models and performs no I/O.
package policy

import "food-distribution-backend/models"

type Action string

const (
	ActionView       Action = "view"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionDistribute Action = "distribute"
)

type Kind string

const (
	KindBeneficiary Kind = "beneficiary"
	KindCenter      Kind = "center"
	KindSchedule    Kind = "schedule"
	KindPrincipal   Kind = "principal"
	KindReport      Kind = "report"
	KindDashboard   Kind = "dashboard"
)

// Resource describes what an action is aimed at. TargetRole is the current
// role of a principal record being acted on; RequestedRole is the role being
// assigned by a create or role change.
type Resource struct {
	Kind          Kind
	TargetRole    models.Role
	RequestedRole models.Role
}

func On(kind Kind) Resource {
	return Resource{Kind: kind}
}

// Can reports whether p may perform action on res. Inactive principals are
// denied everything.
func Can(p *models.Principal, action Action, res Resource) bool {
	if p == nil || !p.IsActive() || !p.Role.Valid() {
		return false
	}
	admin := p.Role == models.RoleAdmin || p.Role == models.RoleSuperAdmin

	switch res.Kind {
	case KindBeneficiary:
		switch action {
		case ActionView:
			return true
		case ActionCreate:
			return admin || p.CanCreateBeneficiaries
		case ActionUpdate, ActionApprove, ActionReject:
			return admin
		}
	case KindCenter:
		switch action {
		case ActionView:
			return true
		case ActionCreate, ActionUpdate, ActionDelete:
			return admin
		}
	case KindSchedule:
		switch action {
		case ActionView, ActionDistribute:
			return true
		case ActionCreate:
			return admin
		}
	case KindDashboard:
		return action == ActionView
	case KindReport:
		return action == ActionView && admin
	case KindPrincipal:
		return canOnPrincipal(p, action, res)
	}
	return false
}

func canOnPrincipal(p *models.Principal, action Action, res Resource) bool {
	if res.RequestedRole == models.RoleSuperAdmin {
		return false
	}
	switch action {
	case ActionView:
		return p.IsSuperAdmin()
	case ActionCreate:
		switch p.Role {
		case models.RoleSuperAdmin:
			return res.RequestedRole == models.RoleStaff || res.RequestedRole == models.RoleAdmin
		case models.RoleAdmin:
			return res.RequestedRole == models.RoleStaff
		}
		return false
	case ActionUpdate, ActionDelete:
		return p.IsSuperAdmin() && res.TargetRole != models.RoleSuperAdmin
	}
	return false
}
