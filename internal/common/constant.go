// Package common contains shared constants, sentinel errors and small helpers
// used across gophtodo components.
package common

// Header names attached to every outbound API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
)

// Fixed keys of the local key/value surface.
const (
	// CredentialKey holds the bearer credential issued by the auth service.
	CredentialKey = "auth_token"
	// TodosKey holds the serialized item sequence of the local list variant.
	TodosKey = "todos"
)
