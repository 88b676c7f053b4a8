package domain

// Identity is the authenticated principal resolved once from a verified
// token and passed explicitly through service calls. Services never perform
// their own credential verification.
type Identity struct {
	UserID   uint
	Email    string
	FullName string
	Roles    []string
}

// HasRole reports whether the identity carries the given role
func (i Identity) HasRole(name string) bool {
	for _, r := range i.Roles {
		if r == name {
			return true
		}
	}
	return false
}
