// Package rpc carries the storage protocol over gRPC so that page hosts in
// other processes can reach the storage service. The protocol is described by
// a file descriptor registered in the global protobuf registry (mirrored by
// api/localstore/v1/storage.proto), so any protobuf client can call it and
// gRPC reflection can serve it.
package rpc
