package rbac

// Role names. Keep these stable; they are part of auth contracts.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
