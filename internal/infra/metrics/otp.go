package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		OTPSendRequests,
		OTPSendDuration,
		OTPVerifyRequests,
	)
}

var (
	// Count of send-code calls grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): invalid_phone|cooldown|rate_limited|dispatch|unknown
	OTPSendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_send_requests_total",
			Help: "Count of OTP send requests by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// Latency of the send handler grouped by result.
	OTPSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "otp_send_duration_seconds",
			Help:    "Duration of OTP send handling in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	// Count of verify-code calls grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): expired|mismatch|attempts|unknown
	OTPVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verify_requests_total",
			Help: "Count of OTP verify requests by result and reason.",
		},
		[]string{"result", "reason"},
	)
)
