package store

// RolesStore exposes role lookups and authorization checks.
type RolesStore interface {
	// RoleExists reports whether a role with the given fully qualified
	// ID is present.
	RoleExists(roleID string) (bool, error)

	// RoleAllowedTo reports whether the role holds the named privilege
	// on the resource.
	RoleAllowedTo(roleID, privilege, resourceID string) (bool, error)

	// RoleAnnotations returns the annotations attached to the role's
	// resource, keyed by annotation name.
	RoleAnnotations(roleID string) (map[string]string, error)
}
