package ratelimit

import "time"

// Category is a named class of API calls sharing one rate-limit configuration.
type Category string

const (
	// CategoryGeneral covers calls with no more specific category.
	CategoryGeneral Category = "general"

	// CategoryFeed covers timeline and feed reads.
	CategoryFeed Category = "feed"

	// CategoryInteractions covers record mutations (likes, reposts, follows,
	// posts, deletes).
	CategoryInteractions Category = "interactions"

	// CategorySearch covers search calls.
	CategorySearch Category = "search"
)

// DefaultKey is the bucket key used when a call site does not supply one.
// All unkeyed callers within a category share this bucket.
const DefaultKey = "default"

// Config defines the capacity and refill window for one category.
type Config struct {
	// MaxRequests is the bucket capacity and the maximum immediate burst.
	MaxRequests int64

	// Window is the period over which MaxRequests tokens are earned.
	Window time.Duration
}

// DefaultLimits returns the stock category table.
//
// The values match the quotas the upstream service enforces per client:
// 300 general and 100 feed and 500 interaction calls per 5 minutes, and
// 50 search calls per minute.
func DefaultLimits() map[Category]Config {
	return map[Category]Config{
		CategoryGeneral:      {MaxRequests: 300, Window: 5 * time.Minute},
		CategoryFeed:         {MaxRequests: 100, Window: 5 * time.Minute},
		CategoryInteractions: {MaxRequests: 500, Window: 5 * time.Minute},
		CategorySearch:       {MaxRequests: 50, Window: time.Minute},
	}
}
