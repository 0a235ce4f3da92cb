// Package healthcheck implements optional periodic health probing for
// backend servers. It dials each backend over TCP and toggles the
// backend's maintenance flag based on the result.
package healthcheck
