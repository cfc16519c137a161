// Package contract checks a running plant monitor against the HTTP contract
// its dashboard and existing clients depend on. The tests skip unless a
// monitor is reachable at PLANTMON_BASE_URL (default http://localhost:8080).
//
// The monitor serves one client at a time, so the suite must not run in
// parallel with a browser holding /stream open.
package contract
