// Package todo manages the user's todo list.
//
// A Manager holds the in-memory sequence and the single edit slot and talks
// to a Store. Two stores exist: RemoteStore, backed by the todo service, and
// LocalStore, which keeps the whole list as one JSON value in a key/value
// repository. The Manager only changes its state after the store accepted
// the change, so it is never ahead of what was persisted.
package todo
