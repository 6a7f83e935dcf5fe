// Package metrics exposes Prometheus metrics for the HTTP API and discovery syncs.
//
// Collectors are package level variables registered with the default registry.
// Middleware counts every request by method and status, RecordSync tracks each
// controller or hypervisor discovery, and Handler serves /metrics.
//
//	timer := metrics.NewTimer()
//	devices, err := pull(ctx)
//	metrics.RecordSync("unifi", timer, len(devices), err)
package metrics
