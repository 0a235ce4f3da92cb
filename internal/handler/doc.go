// Package handler implements the per-connection dispatch for the load
// balancer. It coordinates backend selection, forwarding, and the
// rejection path when no backend is available.
package handler
