// Package source implements the upstream inventory clients.
//
// Two sources exist: the endpoint-protection platform and the MDM platform.
// Both expose the same contract: FetchAll drains the upstream's cursor
// pagination to exhaustion and returns either the complete inventory or a
// single FetchError naming the source. There is no partial-success return:
// a partial inventory would cause real devices to be misclassified as
// "only in the other source", so any page failure fails the whole fetch.
//
// Authentication uses OAuth client credentials. Tokens are cached by
// CachedTokenProvider with a conservative expiry margin and refreshed under
// a double-checked lock; a 401 mid-pagination invalidates the cache and the
// request is retried once with a fresh token.
//
// Each page response carries a request-cost figure. FetchAll accumulates
// these into the returned Cost so the engine can attribute throughput-cost
// per phase.
package source
