package domain

// Actor is the caller of a workflow operation, resolved by the identity layer.
type Actor struct {
	UserID     string
	Roles      RoleSet
	TeamIDs    []string
	IsReporter bool
}

// SystemActor is the identity used by scheduled jobs such as the auto-close sweep.
func SystemActor() Actor {
	return Actor{UserID: "system", Roles: NewRoleSet(RoleSystem)}
}

// InTeam reports whether the actor belongs to teamID.
func (a Actor) InTeam(teamID string) bool {
	if teamID == "" {
		return false
	}
	for _, id := range a.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// ForWorkOrder returns a copy with IsReporter resolved against the work order.
func (a Actor) ForWorkOrder(wo *WorkOrder) Actor {
	a.IsReporter = wo != nil && wo.IsReportedBy(a.UserID)
	return a
}
