// internal/app/auth.go
package app

// Identity is the subset of a Google profile the service cares about.
type Identity struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"photo"`
}

// Gate answers the two capability questions derived from one identity:
// is the caller known at all, and is the caller on the admin allow-list.
type Gate struct {
	config *Config
}

func NewGate(config *Config) *Gate {
	return &Gate{config: config}
}

func (g *Gate) IsAuthenticated(caller *Identity) bool {
	return caller != nil && caller.Email != ""
}

// IsAuthorized checks allow-list membership. The list is consulted on every
// call so a config reload takes effect without restarting. Matching is exact
// and case-sensitive. An empty list authorizes nobody.
func (g *Gate) IsAuthorized(caller *Identity) bool {
	if !g.IsAuthenticated(caller) {
		return false
	}
	for _, email := range g.config.Auth.AuthorizedEmails {
		if email == caller.Email {
			return true
		}
	}
	return false
}

func (g *Gate) RequireAuthenticated(caller *Identity) error {
	if !g.IsAuthenticated(caller) {
		return ErrAuthRequired
	}
	return nil
}

// RequireAuthorized keeps the two failure reasons distinguishable: an
// unauthenticated caller gets ErrAuthRequired, never ErrNotAuthorized.
func (g *Gate) RequireAuthorized(caller *Identity) error {
	if !g.IsAuthenticated(caller) {
		return ErrAuthRequired
	}
	if !g.IsAuthorized(caller) {
		return ErrNotAuthorized
	}
	return nil
}
