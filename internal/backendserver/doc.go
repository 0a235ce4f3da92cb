// Package backendserver provides the demo backend servers used to
// exercise the load balancer end to end. Each one answers every TCP
// connection with a fixed HTTP response identifying its port.
package backendserver
