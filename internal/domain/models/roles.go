package models

// Role values are the names of the Mongo collections that hold the role
// records. A subject id appears in at most one of the three collections;
// the identity resolver depends on that invariant.
const (
	RoleStudents  = "students"
	RoleCompanies = "companies"
	RoleAdmins    = "admins"
)

// RoleCollections lists the role collections in resolution priority order.
// The order is load-bearing: if a subject ever appears in more than one
// collection (malformed data), the earlier collection wins.
var RoleCollections = []string{RoleStudents, RoleCompanies, RoleAdmins}

// IsValidRole reports whether role names one of the three role collections.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudents, RoleCompanies, RoleAdmins:
		return true
	}
	return false
}

// Company verification workflow states.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// IsValidVerificationStatus reports whether s is a known verification state.
func IsValidVerificationStatus(s string) bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}
