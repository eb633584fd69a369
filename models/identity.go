package models

// Roles carried in the auth token. Provider roles reuse the kind names.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Actor is the authenticated identity resolved by the auth middleware.
// The booking engine trusts it verbatim and never re-derives it.
type Actor struct {
	ID   string
	Role string
}

// ProviderKind returns the provider kind when the actor is a provider.
func (a Actor) ProviderKind() (ProviderKind, bool) {
	k, err := ParseProviderKind(a.Role)
	if err != nil {
		return "", false
	}
	return k, true
}

// IsProvider reports whether the actor acts as a service provider.
func (a Actor) IsProvider() bool {
	_, ok := a.ProviderKind()
	return ok
}
