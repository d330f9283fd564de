package config

import (
	"time"
)

// GetRefreshInterval returns the refresh interval as time.Duration
func (s *SourceSettings) GetRefreshInterval() time.Duration {
	if s.RefreshInterval <= 0 {
		return 3600 * time.Second
	}
	return time.Duration(s.RefreshInterval) * time.Second
}

// GetTimeout returns the fetch timeout as time.Duration
func (s *SourceSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}
