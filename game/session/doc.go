// Package session provides session management for Acronym Hunt.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Short session ID generation
//   - Expiry of sessions that have not been touched for a while
//   - JSON snapshots of engine state on disk
//
// Manager owns the sessions map. Each session carries its own engine, built
// against the shared term catalog, so sessions never share a grid or counters.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference and are looked up
// case-insensitively.
//
// Usage:
//
//	manager := session.NewManager(catalog.Default())
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Persistence:
//
// NewManagerWithPersistence wires a SessionPersistence such as FilePersistence.
// Sessions are saved on creation and access, and loaded lazily on Get.
package session
