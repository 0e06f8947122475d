// Package health provides liveness, readiness and version endpoints for
// the rdl server.
//
// Components register a CheckFunc; readiness runs every check
// concurrently with a per-check timeout and answers 503 when any fails.
//
//	hc := health.New(2 * time.Second)
//	hc.RegisterCheck("history", store.Ping)
//	hc.Register(mux, version, commit, buildTime)
package health
