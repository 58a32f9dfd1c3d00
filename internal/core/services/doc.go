// Package services contains the mining pipeline logic: incremental sync
// planning, multi-pattern search mining with date-range partitioning,
// acceptance statistics and the per-cycle runner that ties the driven
// ports together.
package services
