// Package router multiplexes micro app paths into the shared URL.
//
// Ownership boundary:
// - search/hash query view of the shared URL
// - attach/detach of one app's encoded path
// - placement policy choosing the hash query or the search query
//
// Every operation reads an explicit location.Location snapshot and returns
// the next one. Publishing the result to the real URL belongs to the caller.
package router
