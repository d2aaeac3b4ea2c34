// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// chat client.
//
// Configuration is TOML with sensible defaults and AICHAT_* environment
// variable overrides, stored at ~/.aichat/config.toml. The file holds
// the API key and is written owner-only. Watch provides hot reload
// through filesystem notifications.
package config
