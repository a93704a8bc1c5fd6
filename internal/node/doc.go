// Package node wires a storage service to a gRPC server with health
// reporting, and manages their start and shutdown together.
package node
