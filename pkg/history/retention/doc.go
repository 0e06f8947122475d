// Package retention removes old check records.
//
// A Pruner deletes records older than the configured number of days and,
// when a record cap is set, the oldest records beyond it. A Scheduler runs
// the pruner on a cron expression such as "0 3 * * *".
package retention
