// Package client is the transport boundary of the todo client.
//
// # Overview
//
// The package provides:
//  1. Narrow contracts the core calls: AuthAPI for the remote auth service,
//     TodoAPI for the remote list service, Pinger for connectivity checks,
//     and CredentialSource which the transport reads on every request.
//  2. HTTPClient, a JSON-over-HTTP implementation of all of them. It keeps a
//     cookie jar, sends the current credential as a bearer token, tags each
//     request with an X-Request-ID and bounds every call with a timeout.
//
// # Error Handling
//
// Auth endpoints report business failures as {success:false, message}; those
// are returned as a normal *models.AuthResponse, not as an error. Everything
// else maps onto sentinel errors matched with errors.Is: ErrUnavailable,
// ErrUnauthorized, ErrMalformedResponse, or an APIError carrying the status.
package client
