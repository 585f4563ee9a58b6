// Cirrus is a rate-limit-aware client daemon for Bluesky (AT Protocol).
//
// It wraps the XRPC API behind a local token-bucket rate limiter, keeps a
// cached copy of the account's notifications, and exposes a small admin
// endpoint with health, metrics, and budget information.
//
// Usage:
//
//	# Start the daemon with default configuration
//	cirrus run
//
//	# Start with a custom configuration file
//	cirrus run --config /path/to/config.yaml
//
//	# Validate a configuration file without starting
//	cirrus validate
//
//	# Show version information
//	cirrus version
package main

func main() {
	Execute()
}
