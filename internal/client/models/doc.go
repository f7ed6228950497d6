// Package models defines the client-side data shapes exchanged with the
// remote auth and todo services and handed to the front-end.
package models
