package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultUserAgent = "Mozilla/5.0 (HackScout/1.0; +https://github.com/law-makers/hackscout)"

	DefaultHTTPTimeout = 15 * time.Second

	DefaultStaticRateLimitRPS    = 1.0
	DefaultStaticRateLimitBurst  = 1
	DefaultDynamicRateLimitRPS   = 2.0
	DefaultDynamicRateLimitBurst = 2

	DefaultBrowserHeadless = true
	DefaultImplicitWait    = 5 * time.Second
	DefaultListingSettle   = 3 * time.Second
	DefaultDetailSettle    = 2 * time.Second
	DefaultPageLoadTimeout = 30 * time.Second

	DefaultRetryMax        = 3
	DefaultRetryInitial    = 2 * time.Second
	DefaultRetryMaxDelay   = 30 * time.Second
	DefaultRetryMultiplier = 2.0

	DefaultCount         = 10
	DefaultMaxCount      = 50
	DefaultMaxPages      = 0
	DefaultStreamTimeout = 5 * time.Minute

	DefaultMLHSeason       = "2026"
	DefaultImageWorkers    = 5
	DefaultImageTimeout    = 60 * time.Second
	DefaultMaxImageWorkers = 50
)
