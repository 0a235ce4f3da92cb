// Package backend defines the per-backend bookkeeping record. It tracks
// active connections, the lifetime connection total, and the maintenance
// flag under a single mutex, and mints connection ids at assignment time.
package backend
