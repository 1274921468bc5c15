// Package results stores finished-session summaries.
//
// A Summary is built once a session reaches GameOver and is handed to a Sink.
// SQLiteStore and MemoryStore implement both Sink and Leaderboard; Submitter
// wraps any Sink with bounded, backed-off retries so a flaky store never
// touches the finished session itself.
package results
