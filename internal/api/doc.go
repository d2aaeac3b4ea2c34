// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for OpenAI-compatible
// chat-completions endpoints.
//
// Requests use the standard streaming schema ({model, messages,
// stream:true}) and parse the server-sent-event response chunk by chunk.
// Timeouts are phase-scoped: 10s to connect and receive headers, then a
// 60s per-chunk watchdog that fails a silent stream; the overall request
// has no deadline and is cancelled through the caller's context.
package api
