// Package retention removes old finished jobs on a cron schedule.
//
// A sweep lists completed and failed jobs not updated within the configured
// age, deletes their local files, then deletes their records.
package retention
