// Package origin derives the origin key that partitions page-local storage.
// The key is built from a URL's scheme, host and port in the form
// "scheme://host:port/", with ":port" present only when the URL names a port.
package origin
