// Package metrics defines the Prometheus collectors for the load balancer.
//
// Collectors are registered on the default registry via promauto and
// exposed by the admin server's /metrics endpoint. All metric names share
// the loadbalancer_ prefix:
//
//   - loadbalancer_connections_total: connections assigned per backend,
//     counted at assignment time so failed dials are included
//   - loadbalancer_connections_current: in-flight connections per backend
//   - loadbalancer_connection_duration_seconds: histogram of proxied
//     connection lifetimes
//   - loadbalancer_bytes_transferred_total: relayed bytes per direction
//   - loadbalancer_rejected_connections_total: clients turned away when
//     no backend was available
//   - loadbalancer_backend_dial_failures_total: failed backend dials
//   - loadbalancer_accept_errors_total: accept errors skipped by the
//     listener loop
//   - loadbalancer_backend_maintenance: per-backend maintenance state
//
// Counters are updated inline on the connection path.
package metrics
