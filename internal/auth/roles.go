package auth

const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// RoleForSignupType maps a caller-provided signup type to a role. Unknown or
// empty values fall back to the plain user role.
func RoleForSignupType(signupType string) string {
	switch signupType {
	case RoleSeller:
		return RoleSeller
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}
