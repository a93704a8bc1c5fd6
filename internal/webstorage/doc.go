// Package webstorage provides the page-facing Storage object. Each method
// turns one script call into requests to the storage service, keyed by the
// origin of the page's current URL.
package webstorage
