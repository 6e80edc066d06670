/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package llm provides a single-completion interface over the Anthropic,
// OpenAI, and Gemini APIs.
//
// Feedback generation needs one prompt in and one text response out, so the
// Completer interface is deliberately narrower than the underlying SDKs: no
// tool calls, no streaming surface, no conversation state. Each backend
// retries transient errors per its configured policy and records token usage
// on the unified GenAI meter.
package llm
