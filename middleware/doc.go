// Package middleware exposes HTTP middleware adapters for access-token
// enforcement and per-IP throttling built on top of kioskAuth.Engine
// validation.
//
// # Guards
//
//   - [Guard] — stateless access-token verification on every request.
//   - [RequireRole] — [Guard] plus a role check on the validated claims.
//   - [Throttle] — general per-IP fixed-window rate limiting.
//
// Each guard reads the Authorization header, calls Engine.ValidateAccess, and
// injects the validated identity into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.ValidateAccess.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis beyond the throttle counter.
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
