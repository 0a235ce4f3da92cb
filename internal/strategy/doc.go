// Package strategy defines the load balancing strategy interface and
// implements the selection algorithms:
//
//   - Round Robin: Sequential rotation across backends. The cursor moves
//     past every examined backend, so a backend skipped for maintenance
//     still uses up its turn in the rotation.
//   - Least Connections: Routes to the backend with the fewest active
//     connections, preferring the earliest backend on ties.
//   - Random: Uniform random selection.
//
// All strategies skip backends in maintenance and return nil when no
// backend is selectable.
package strategy
