package rbac

const (
	RoleGuest = "guest"
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	RoleGuest: {
		"questions:view",
		"categories:view",
		"records:manage-own",
		"progress:manage-own",
		"profile:manage",
	},
	RoleUser: {
		"questions:view",
		"categories:view",
		"records:manage-own",
		"progress:manage-own",
		"profile:manage",
	},
	RoleAdmin: {
		"*", // everything
	},
}
