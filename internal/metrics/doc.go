// Package metrics exposes operational counters and gauges for progressd
// using github.com/prometheus/client_golang. This is additive
// instrumentation layered on top of the tracking subsystem, not a
// reinterpretation of its core design.
package metrics
