// Package driven defines the outbound ports of the mining core: the search
// provider, the blob object store and the typed stores layered on top of
// it. Adapters implement these interfaces; services depend only on them.
package driven
