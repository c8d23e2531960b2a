// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid combinations.
// Called during Load; failures abort startup.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}

	if c.Database.Path == "" {
		problems = append(problems, "database.path must not be empty")
	}
	if c.Database.QueryTimeout <= 0 {
		problems = append(problems, "database.query_timeout must be positive")
	}

	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			problems = append(problems, "security.jwt_secret must be at least 32 characters when auth_mode is jwt")
		}
	case "none":
		if c.Server.Environment == "production" {
			problems = append(problems, "security.auth_mode none is not allowed in production")
		}
	default:
		problems = append(problems, fmt.Sprintf("security.auth_mode must be jwt or none, got %q", c.Security.AuthMode))
	}

	if c.Access.SweepInterval <= 0 {
		problems = append(problems, "access.sweep_interval must be positive")
	}
	if c.Access.ExpiryWarnInterval <= 0 {
		problems = append(problems, "access.expiry_warn_interval must be positive")
	}
	if c.Access.ExpiryWarnAfter >= c.Access.ExpiryWarnBefore {
		problems = append(problems, "access.expiry_warn_after must be less than access.expiry_warn_before")
	}

	if c.Audit.BufferSize <= 0 {
		problems = append(problems, "audit.buffer_size must be positive")
	}

	if c.API.DefaultPageSize <= 0 || c.API.DefaultPageSize > c.API.MaxPageSize {
		problems = append(problems, "api.default_page_size must be positive and not exceed api.max_page_size")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
