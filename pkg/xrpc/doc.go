// Package xrpc provides a rate-limited AT Protocol XRPC client.
//
// # Overview
//
// The client issues XRPC calls against a configurable service base URL:
// queries as GET /xrpc/{nsid} and procedures as POST /xrpc/{nsid}. Every
// call site boundary is the same: the call first passes an admission check
// for the category its NSID maps to, and only then touches the network.
// A denied check surfaces a *ratelimit.RateLimitError without issuing the
// request; the carried wait (whole seconds, rounded up) is suitable for
// user-facing messaging.
//
// # Category Routing
//
// CategoryFor maps an NSID onto a rate limit category:
//
//   - search calls (app.bsky.feed.searchPosts, *.search*) -> search
//   - feed and timeline reads (app.bsky.feed.*) -> feed
//   - record mutations (com.atproto.repo.createRecord, deleteRecord) ->
//     interactions
//   - everything else -> general
//
// # Authentication
//
// Credential lifecycle is outside this package. A TokenSource supplies the
// bearer access token per call; the client never logs in, refreshes, or
// persists credentials. Use StaticTokenSource for a fixed token, or a nil
// source for unauthenticated endpoints.
package xrpc
