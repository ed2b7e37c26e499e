package internaldefs

import (
	kioskAuth "github.com/MrEthical07/kioskAuth"
)

// CounterDef defines a public type used by kioskAuth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   kioskAuth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by kioskAuth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   kioskAuth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the kiosk authentication engine.
var CounterDefs = []CounterDef{
	{ID: kioskAuth.MetricOTPRequested, Name: "kioskauth_otp_requested_total", Help: "Issued OTP challenges."},
	{ID: kioskAuth.MetricOTPRequestRateLimited, Name: "kioskauth_otp_request_rate_limited_total", Help: "Rate-limited OTP issuance attempts."},
	{ID: kioskAuth.MetricOTPVerifySuccess, Name: "kioskauth_otp_verify_success_total", Help: "Successful OTP verifications."},
	{ID: kioskAuth.MetricOTPVerifyFailure, Name: "kioskauth_otp_verify_failure_total", Help: "Failed OTP verifications."},
	{ID: kioskAuth.MetricOTPVerifyRateLimited, Name: "kioskauth_otp_verify_rate_limited_total", Help: "Rate-limited OTP verification attempts."},
	{ID: kioskAuth.MetricOTPLocked, Name: "kioskauth_otp_locked_total", Help: "Challenges locked after exceeding the attempt cap."},
	{ID: kioskAuth.MetricOTPExpired, Name: "kioskauth_otp_expired_total", Help: "Verification attempts against expired challenges."},
	{ID: kioskAuth.MetricNotificationSent, Name: "kioskauth_notification_sent_total", Help: "Successful OTP delivery attempts."},
	{ID: kioskAuth.MetricNotificationFailed, Name: "kioskauth_notification_failed_total", Help: "Failed OTP delivery attempts."},
	{ID: kioskAuth.MetricAccountProvisioned, Name: "kioskauth_account_provisioned_total", Help: "Accounts provisioned on first login."},
	{ID: kioskAuth.MetricLoginSuccess, Name: "kioskauth_login_success_total", Help: "Successful logins."},
	{ID: kioskAuth.MetricLoginFailure, Name: "kioskauth_login_failure_total", Help: "Failed logins after OTP verification."},
	{ID: kioskAuth.MetricRefreshSuccess, Name: "kioskauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: kioskAuth.MetricRefreshFailure, Name: "kioskauth_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: kioskAuth.MetricRefreshReuseDetected, Name: "kioskauth_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: kioskAuth.MetricLogout, Name: "kioskauth_logout_total", Help: "Logout operations."},
	{ID: kioskAuth.MetricProfileUpdated, Name: "kioskauth_profile_updated_total", Help: "Profile update operations."},
	{ID: kioskAuth.MetricRateLimitHit, Name: "kioskauth_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
}

// HistogramDefs is an exported constant or variable used by the kiosk authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: kioskAuth.MetricVerifyLatency, Name: "kioskauth_verify_latency_seconds", Help: "OTP verification latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the kiosk authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the kiosk authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
