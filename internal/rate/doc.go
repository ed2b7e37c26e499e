// Package rate provides internal primitives used to build Redis-backed rate
// limit keys, errors, and limiter behavior for the kiosk platform's general
// request budget.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefix:
//   - kg: — general per-IP budget
//
// OTP-specific windows (request and verification) are not built here; they
// live next to the challenge store in the root package because they key on
// (IP, identifier) pairs.
//
// # What this package must NOT do
//
//   - Implement OTP issuance or verification policy.
//   - Be imported outside the kioskAuth module.
package rate
