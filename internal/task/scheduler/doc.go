// Package scheduler runs named interval jobs on a cron clock. A job never
// overlaps itself: a tick that fires while the previous run is still going is
// skipped and counted.
package scheduler
