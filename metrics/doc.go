/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry metrics for the model calls made
// during feedback generation.
//
// Metric creation degrades gracefully: a counter that fails to initialize is
// replaced with a no-op so observability problems never affect grading.
package metrics
