// Package config loads node settings from LOCALSTORE_* environment variables.
package config
