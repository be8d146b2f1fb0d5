package authentication

//go:generate go run github.com/dmarkham/enumer -type Privilege -trimprefix Privilege -transform lower -output privilege.gen.go

// Privilege is a named capability checked against a resource.
type Privilege int

const (
	PrivilegeAuthenticate Privilege = iota
	PrivilegeRead
	PrivilegeExecute
	PrivilegeUpdate
	PrivilegeCreate
)
