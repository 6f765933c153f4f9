// Package pkg provides shared utilities for the softnand flash driver.
//
// This package contains common functionality used across the driver core
// and its hardware abstraction layers, including:
//
//   - Structured logging via [go.uber.org/zap]
//   - Sentinel error values for the driver's failure taxonomy
//   - Component identifiers for log filtering
//   - Prometheus counters for driver-level events
//
// # Logging
//
// The logging subsystem wraps a zap sugared logger with driver-specific
// context:
//
//	pkg.SetLogLevel(zapcore.DebugLevel)
//	pkg.LogInfo(pkg.ComponentNAND, "chip identified", "device", "K9F1G08U0A")
//
// # Errors
//
// Driver failures are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrECC) {
//	    // Page data is beyond single-bit correction
//	}
package pkg
