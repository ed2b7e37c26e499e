// Package accountstore provides Redis-backed implementations of the account
// and profile provider interfaces for deployments without a relational
// database. All keys use the "ak:" prefix; identifier uniqueness is enforced
// through SetNX-claimed index keys.
package accountstore
