package domain

import (
	"fmt"
	"time"
)

// Default settings values.
const (
	DefaultAddr                 = "127.0.0.1:8501"
	DefaultMaxUploadBytes       = 32 << 20
	DefaultReadTimeoutSecs      = 30
	DefaultWriteTimeoutSecs     = 30
	DefaultMaxEntryBytes        = 16 << 20
	DefaultMaxTotalBytes        = 64 << 20
	DefaultArchiveMaxEntries    = 1024
	DefaultResultTTLSeconds     = 600
	DefaultResultMaxEntries     = 256
	DefaultRatePerSecond        = 5.0
	DefaultRateBurst            = 10
	minResultTTLSeconds         = 1
	minTimeoutSeconds           = 1
	maxUploadBytesUpperBound    = 1 << 30
	maxEntryBytesUpperBound     = 1 << 30
	maxTotalBytesUpperBound     = 4 << 30
	maxArchiveEntriesUpperBound = 1 << 16
	maxResultEntriesUpperBound  = 1 << 16
)

// Settings is the application configuration.
type Settings struct {
	Server    ServerSettings    `toml:"server"`
	Archive   ArchiveSettings   `toml:"archive"`
	Results   ResultSettings    `toml:"results"`
	RateLimit RateLimitSettings `toml:"rate_limit"`
	Log       LogSettings       `toml:"log"`
}

// ServerSettings configures the web UI listener.
type ServerSettings struct {
	// Addr is the TCP listen address.
	Addr string `toml:"addr"`

	// MaxUploadBytes caps the request body of an upload.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	ReadTimeoutSeconds  int `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `toml:"write_timeout_seconds"`
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerSettings) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerSettings) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ArchiveSettings configures archive extraction.
type ArchiveSettings struct {
	// MaxEntryBytes caps the uncompressed size of a single entry.
	MaxEntryBytes int64 `toml:"max_entry_bytes"`
	// MaxTotalBytes caps the uncompressed size of all entries read from
	// one archive.
	MaxTotalBytes int64 `toml:"max_total_bytes"`
	// MaxEntries caps the number of members an archive may list.
	MaxEntries int `toml:"max_entries"`
}

// ResultSettings configures how long converted files stay downloadable.
type ResultSettings struct {
	TTLSeconds int `toml:"ttl_seconds"`
	MaxEntries int `toml:"max_entries"`
}

// TTL returns the result lifetime as a duration.
func (s ResultSettings) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// RateLimitSettings configures the upload token bucket.
// A PerSecond of zero disables limiting.
type RateLimitSettings struct {
	PerSecond float64 `toml:"per_second"`
	Burst     int     `toml:"burst"`
}

// Enabled returns true if requests are rate limited.
func (s RateLimitSettings) Enabled() bool {
	return s.PerSecond > 0
}

// LogSettings configures logging.
type LogSettings struct {
	Verbose bool `toml:"verbose"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Addr:                DefaultAddr,
			MaxUploadBytes:      DefaultMaxUploadBytes,
			ReadTimeoutSeconds:  DefaultReadTimeoutSecs,
			WriteTimeoutSeconds: DefaultWriteTimeoutSecs,
		},
		Archive: ArchiveSettings{
			MaxEntryBytes: DefaultMaxEntryBytes,
			MaxTotalBytes: DefaultMaxTotalBytes,
			MaxEntries:    DefaultArchiveMaxEntries,
		},
		Results: ResultSettings{
			TTLSeconds: DefaultResultTTLSeconds,
			MaxEntries: DefaultResultMaxEntries,
		},
		RateLimit: RateLimitSettings{
			PerSecond: DefaultRatePerSecond,
			Burst:     DefaultRateBurst,
		},
	}
}

// Validate checks that every setting is usable.
// Returned errors wrap ErrInvalidSettings.
func (s *Settings) Validate() error {
	switch {
	case s.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidSettings)
	case s.Server.MaxUploadBytes <= 0 || s.Server.MaxUploadBytes > maxUploadBytesUpperBound:
		return fmt.Errorf("%w: server.max_upload_bytes out of range: %d", ErrInvalidSettings, s.Server.MaxUploadBytes)
	case s.Server.ReadTimeoutSeconds < minTimeoutSeconds:
		return fmt.Errorf("%w: server.read_timeout_seconds must be positive", ErrInvalidSettings)
	case s.Server.WriteTimeoutSeconds < minTimeoutSeconds:
		return fmt.Errorf("%w: server.write_timeout_seconds must be positive", ErrInvalidSettings)
	case s.Archive.MaxEntryBytes <= 0 || s.Archive.MaxEntryBytes > maxEntryBytesUpperBound:
		return fmt.Errorf("%w: archive.max_entry_bytes out of range: %d", ErrInvalidSettings, s.Archive.MaxEntryBytes)
	case s.Archive.MaxTotalBytes < s.Archive.MaxEntryBytes || s.Archive.MaxTotalBytes > maxTotalBytesUpperBound:
		return fmt.Errorf("%w: archive.max_total_bytes must be between max_entry_bytes and %d: %d",
			ErrInvalidSettings, int64(maxTotalBytesUpperBound), s.Archive.MaxTotalBytes)
	case s.Archive.MaxEntries <= 0 || s.Archive.MaxEntries > maxArchiveEntriesUpperBound:
		return fmt.Errorf("%w: archive.max_entries out of range: %d", ErrInvalidSettings, s.Archive.MaxEntries)
	case s.Results.TTLSeconds < minResultTTLSeconds:
		return fmt.Errorf("%w: results.ttl_seconds must be positive", ErrInvalidSettings)
	case s.Results.MaxEntries <= 0 || s.Results.MaxEntries > maxResultEntriesUpperBound:
		return fmt.Errorf("%w: results.max_entries out of range: %d", ErrInvalidSettings, s.Results.MaxEntries)
	case s.RateLimit.PerSecond < 0:
		return fmt.Errorf("%w: rate_limit.per_second must not be negative", ErrInvalidSettings)
	case s.RateLimit.Enabled() && s.RateLimit.Burst < 1:
		return fmt.Errorf("%w: rate_limit.burst must be at least 1", ErrInvalidSettings)
	}
	return nil
}
