package ical

import "time"

// EngineConfig holds tuning options for the recurrence engine.
type EngineConfig struct {
	// Cache configuration
	CacheEnabled bool
	CacheConfig  CacheConfig

	// Performance tuning
	MaxProbeOccurrences int           // occurrences checked per HasOccurrenceInRange probe
	LargeRangeThreshold time.Duration // ranges longer than this get a limited first probe
	LargeRangeLimit     time.Duration // length of that limited probe
}

// DefaultEngineConfig provides sensible defaults for production use.
var DefaultEngineConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig:  DefaultCacheConfig,

	MaxProbeOccurrences: 100,
	LargeRangeThreshold: 90 * 24 * time.Hour,
	LargeRangeLimit:     90 * 24 * time.Hour,
}

// HighPerformanceConfig trades probe thoroughness for speed in high-traffic
// scenarios.
var HighPerformanceConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             30 * time.Minute,
		MaxEntries:      5000,
		CleanupInterval: 10 * time.Minute,
	},

	MaxProbeOccurrences: 50,
	LargeRangeThreshold: 30 * 24 * time.Hour,
	LargeRangeLimit:     30 * 24 * time.Hour,
}

// LowMemoryConfig keeps the cache small for constrained environments.
var LowMemoryConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: 2 * time.Minute,
	},

	MaxProbeOccurrences: 200,
	LargeRangeThreshold: 180 * 24 * time.Hour,
	LargeRangeLimit:     180 * 24 * time.Hour,
}

// DisabledCacheConfig turns off caching entirely.
var DisabledCacheConfig = EngineConfig{
	CacheEnabled: false,

	MaxProbeOccurrences: 1000,
	LargeRangeThreshold: 365 * 24 * time.Hour,
	LargeRangeLimit:     365 * 24 * time.Hour,
}
