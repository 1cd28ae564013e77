// Package helper provides testing utilities and observability spies for
// PostgreSQL library store testing.
//
// This package contains shared testing infrastructure including custom log
// handlers for capturing and validating log output during tests, spies for
// the metrics and tracing interfaces, and common test data arrangement
// helpers used across the PostgreSQL library store test suite.
package helper
