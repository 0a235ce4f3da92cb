// Package forwarder relays bytes between an accepted client connection
// and its assigned backend. Assignment happens before the backend dial
// and is released exactly once per connection, including when the dial
// fails.
package forwarder
