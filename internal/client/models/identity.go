package models

// Identity is the authenticated user's canonical profile as returned by the
// validate endpoint. It is replaced as a whole, never patched field by field.
type Identity struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// Clone returns a detached copy, or nil for a nil receiver.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// AuthResponse is the body every auth endpoint answers with.
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	User    *Identity `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
}
