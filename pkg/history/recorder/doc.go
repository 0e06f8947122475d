// Package recorder turns check outcomes into history records and writes
// them to storage in the background, so a check never waits on the
// database.
package recorder
