// Package git checks documents kept in a Git repository.
//
// A Repository maintains a local clone of one branch and lists the
// documents under a configured path. A Poller pulls on an interval and
// hands the documents touched by new commits to a callback, so a server
// can re-check exactly what changed.
//
// Authentication is by token (HTTPS), SSH key, or none for public
// repositories.
package git
