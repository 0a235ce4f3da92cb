// Package adminapi serves the operational HTTP endpoints of the load
// balancer: pool status, per-backend maintenance control, and Prometheus
// metrics. It listens on its own address so operational traffic never
// mixes with proxied client traffic.
package adminapi
