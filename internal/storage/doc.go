// Package storage provides the ordered in-memory maps behind page-local
// storage. A Table partitions item maps by origin key; each OriginStore keeps
// its keys in ascending lexicographic order so that positional lookups match
// the order scripts observe through key(index).
package storage
