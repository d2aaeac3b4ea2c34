// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "strings"

// visionHints are substrings of model names known to accept image
// content. The check is a heuristic for warning purposes only; the
// supports_vision setting is authoritative.
var visionHints = []string{
	"gpt-4o",
	"gpt-4-turbo",
	"gpt-4.1",
	"gpt-5",
	"o1",
	"o3",
	"vision",
	"claude-3",
	"claude-sonnet",
	"claude-opus",
	"claude-haiku",
	"gemini",
	"pixtral",
	"llava",
	"qwen-vl",
	"qwen2-vl",
	"glm-4v",
	"internvl",
}

// ModelLikelySupportsVision guesses whether a model accepts images from
// its name.
func ModelLikelySupportsVision(model string) bool {
	name := strings.ToLower(model)
	for _, hint := range visionHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// VisionEnabled reports whether image attachments should be sent without
// a warning: either the user marked the model vision-capable or the name
// suggests it.
func (c *Config) VisionEnabled() bool {
	return c.API.SupportsVision || ModelLikelySupportsVision(c.API.Model)
}

// ShouldWarnAboutVision reports whether attaching an image should prompt
// the user first.
func (c *Config) ShouldWarnAboutVision() bool {
	return !c.VisionEnabled() && !c.API.SkipVisionWarning
}
