// Package authz is the role policy: a pure mapping from (actor role,
// action) to allow/deny, plus the two target-aware checks that depend
// on ownership or assignment rather than role alone.
package authz

import "garage-service/internal/model"

// Action enumerates the guarded domain actions
type Action string

const (
	ActionCreateCar       Action = "create_car"
	ActionDeleteCar       Action = "delete_car"
	ActionCreateWorkOrder Action = "create_work_order"
	ActionAssignMechanic  Action = "assign_mechanic"
	ActionOverrideStatus  Action = "override_status"
	ActionCompleteOrder   Action = "complete_order"
	ActionUsePart         Action = "use_part"
	ActionManageParts     Action = "manage_parts"
	ActionListMechanics   Action = "list_mechanics"
)

// Allowed reports whether a role may perform an action at all.
// Ownership and assignment constraints are checked separately.
func Allowed(role model.Role, action Action) bool {
	switch action {
	case ActionCreateCar, ActionDeleteCar, ActionAssignMechanic,
		ActionOverrideStatus, ActionManageParts, ActionListMechanics:
		return role == model.RoleManager
	case ActionCreateWorkOrder:
		return role == model.RoleClient
	case ActionCompleteOrder, ActionUsePart:
		return role == model.RoleMechanic
	}
	return false
}

// CanViewCar reports whether the actor may see a car's details.
// Managers and mechanics see everything, clients only their own cars.
func CanViewCar(role model.Role, ownerName, username string) bool {
	switch role {
	case model.RoleManager, model.RoleMechanic:
		return true
	case model.RoleClient:
		return ownerName == username
	}
	return false
}

// CanActOnOrder reports whether a mechanic may complete an order or
// record part usage on it: the order must be unassigned or assigned to
// that mechanic. A mismatching assignment is a denial, never a
// silent reassignment.
func CanActOnOrder(order *model.WorkOrder, mechanicID uint) bool {
	return order.MechanicID == nil || *order.MechanicID == mechanicID
}
