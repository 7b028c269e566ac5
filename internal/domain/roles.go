package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// roleRank orders roles for minimum-role checks. Unknown roles rank 0 and
// therefore never satisfy any requirement.
var roleRank = map[Role]int{
	RoleParent:         1,
	RoleAssistantCoach: 2,
	RoleHeadCoach:      3,
	RoleAdmin:          4,
}

// HasMinimumRole reports whether userRole is at least requiredRole in the
// role hierarchy (parent < assistant_coach < head_coach < admin).
func HasMinimumRole(userRole, requiredRole Role) bool {
	return roleRank[userRole] >= roleRank[requiredRole] && roleRank[userRole] > 0
}

// HasExactRole reports whether userRole equals requiredRole.
func HasExactRole(userRole, requiredRole Role) bool {
	return userRole == requiredRole
}

// RoleInClub returns the user's role in the given club, considering only
// active memberships. The empty Role means no role, which callers treat as
// denial.
func RoleInClub(memberships []Membership, clubID primitive.ObjectID) Role {
	for _, m := range memberships {
		if m.ClubID == clubID && m.IsActive() {
			return m.Role
		}
	}
	return ""
}

// HighestRole returns the highest-ranked role across the user's active
// memberships, or the empty Role if there are none.
func HighestRole(memberships []Membership) Role {
	var highest Role
	for _, m := range memberships {
		if !m.IsActive() {
			continue
		}
		if roleRank[m.Role] > roleRank[highest] {
			highest = m.Role
		}
	}
	return highest
}
