package authentication

import "strings"

// RoleIDFromLogin converts a login to a fully-qualified role id. Logins are
// user names by default; a "host/" prefix selects the host kind, and any
// other "kind/" prefix is taken verbatim.
func RoleIDFromLogin(account string, login string) string {
	tokens := strings.SplitN(login, "/", 2)
	if len(tokens) == 1 {
		tokens = []string{"user", tokens[0]}
	}
	return account + ":" + tokens[0] + ":" + tokens[1]
}

// LoginFromRoleID is the inverse of RoleIDFromLogin: "acct:user:alice"
// becomes "alice", "acct:host:app/db" becomes "host/app/db".
func LoginFromRoleID(roleID string) string {
	parts := strings.SplitN(roleID, ":", 3)
	if len(parts) != 3 {
		return roleID
	}
	if parts[1] == "user" {
		return parts[2]
	}
	return parts[1] + "/" + parts[2]
}
