package domain

// Role is the authorization role carried by every authenticated caller.
type Role string

const (
	RoleOwner            Role = "property_owner"
	RoleDealingAssistant Role = "dealing_assistant"
	RoleDistrictOfficer  Role = "district_tourism_officer"
	RoleAdmin            Role = "admin"
	RoleSuperAdmin       Role = "super_admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleDealingAssistant, RoleDistrictOfficer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsOfficer reports whether the role is district-scoped.
func (r Role) IsOfficer() bool {
	return r == RoleDealingAssistant || r == RoleDistrictOfficer
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Actor is the authenticated identity acting on an application. District is
// only meaningful for officers and is compared as an opaque string.
type Actor struct {
	ID       UserID
	Role     Role
	District string
}

// PaymentGatewayActor is used when a settlement arrives through the gateway
// callback rather than from a signed-in officer.
func PaymentGatewayActor() Actor {
	return Actor{Role: RoleSuperAdmin}
}

// InDistrict reports whether an officer may act on an application filed in
// district. Non-officers are not district-scoped.
func (a Actor) InDistrict(district string) bool {
	if !a.Role.IsOfficer() {
		return true
	}
	return a.District != "" && a.District == district
}
