// Copyright (c) Microsoft. All rights reserved.

package agentframework

import "slices"

// ToolChoice controls whether and which tools the model may call.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ToolChoiceFunction forces the model to call the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice("function:" + name)
}

// ChatOptions configures one chat completion request. Nil pointers and
// empty strings leave the provider default in place.
type ChatOptions struct {
	ModelID      string
	Temperature  *float64
	MaxTokens    *int
	Seed         *int
	Tools        []Tool
	ToolChoice   ToolChoice
	User         string
	Instructions string
}

// MergeChatOptions overlays the set fields of override onto base and returns
// a new value. Instructions are joined with a newline. Tools are merged by
// name, override winning, in base order followed by new tools.
func MergeChatOptions(base, override *ChatOptions) *ChatOptions {
	var merged ChatOptions
	if base != nil {
		merged = *base
		merged.Tools = slices.Clone(base.Tools)
	}
	if override == nil {
		return &merged
	}

	overlay(&merged.ModelID, override.ModelID)
	overlay(&merged.ToolChoice, override.ToolChoice)
	overlay(&merged.User, override.User)
	overlay(&merged.Temperature, override.Temperature)
	overlay(&merged.MaxTokens, override.MaxTokens)
	overlay(&merged.Seed, override.Seed)

	switch {
	case override.Instructions == "":
	case merged.Instructions == "":
		merged.Instructions = override.Instructions
	default:
		merged.Instructions += "\n" + override.Instructions
	}

	merged.Tools = mergeTools(merged.Tools, override.Tools)
	return &merged
}

// overlay sets *dst to v unless v is the zero value.
func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

func mergeTools(base, extra []Tool) []Tool {
	out := slices.Clone(base)
	for _, t := range extra {
		i := slices.IndexFunc(out, func(b Tool) bool { return b.Name() == t.Name() })
		if i >= 0 {
			out[i] = t
		} else {
			out = append(out, t)
		}
	}
	return out
}
