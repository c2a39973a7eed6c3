// Package metrics registers the service's Prometheus counters. The
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal counts successful tag claims.
	ClaimsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tagregistry_claims_total",
		Help: "Number of tags successfully claimed.",
	})

	// ScansTotal counts public resolutions that recorded a scan event.
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tagregistry_scans_total",
		Help: "Number of scan events recorded by public resolution.",
	})

	// LockedTotal counts blank-tag resolutions withheld from untrusted clients.
	LockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tagregistry_resolve_locked_total",
		Help: "Number of blank-tag resolutions answered with a locked response.",
	})

	// OTPSentTotal counts phone-change codes dispatched.
	OTPSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tagregistry_otp_sent_total",
		Help: "Number of phone-change verification codes sent.",
	})

	// OTPVerifiedTotal counts phone changes committed after verification.
	OTPVerifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tagregistry_otp_verified_total",
		Help: "Number of phone changes committed after OTP verification.",
	})
)
