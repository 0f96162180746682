package api

import (
	"golang.org/x/time/rate"

	"github.com/okian/quantumcrowd/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*options)

type options struct {
	predictRate  rate.Limit
	predictBurst int
	trustProxy   bool
	log          logger.Logger
}

func defaultOptions() options {
	return options{predictBurst: 1}
}

// WithPredictRateLimit limits POST /api/predict per client IP. A rate of
// zero or less disables limiting.
func WithPredictRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		o.predictRate = rate.Limit(perSecond)
		if burst > 0 {
			o.predictBurst = burst
		}
	}
}

// WithTrustedProxyHeaders makes the predict limiter key clients by
// X-Forwarded-For or X-Real-IP instead of the peer address.
func WithTrustedProxyHeaders(trust bool) Option {
	return func(o *options) {
		o.trustProxy = trust
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
