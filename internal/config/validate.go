// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package config

import (
	"fmt"

	"github.com/tomtom215/agenda/internal/validation"
)

// Validate checks field rules and the cross-field constraints the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	switch c.Forward.Mode {
	case "http":
		if c.Forward.HTTP.URL == "" {
			return fmt.Errorf("forward.http.url is required when forward.mode is http")
		}
	case "nats":
		if c.Forward.NATS.URL == "" || c.Forward.NATS.Subject == "" {
			return fmt.Errorf("forward.nats.url and forward.nats.subject are required when forward.mode is nats")
		}
	}

	if c.Server.Enabled && c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}
