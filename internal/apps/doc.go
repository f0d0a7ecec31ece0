// Package apps owns the micro app registry boundary.
//
// Ownership boundary:
// - app entry shape and name validation
// - in-memory registry primitives
// - effective-app predicate used before an app may touch the shared URL
package apps
