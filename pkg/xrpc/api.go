package xrpc

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// NSIDs of the endpoints the typed helpers wrap.
const (
	nsidListNotifications = "app.bsky.notification.listNotifications"
	nsidGetUnreadCount    = "app.bsky.notification.getUnreadCount"
	nsidUpdateSeen        = "app.bsky.notification.updateSeen"
	nsidGetTimeline       = "app.bsky.feed.getTimeline"
	nsidSearchPosts       = "app.bsky.feed.searchPosts"
	nsidCreateRecord      = "com.atproto.repo.createRecord"
	nsidDeleteRecord      = "com.atproto.repo.deleteRecord"
)

// Author is the subject profile attached to a notification.
type Author struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
}

// Notification is one entry from listNotifications.
type Notification struct {
	URI       string          `json:"uri"`
	CID       string          `json:"cid"`
	Author    Author          `json:"author"`
	Reason    string          `json:"reason"`
	Record    json.RawMessage `json:"record,omitempty"`
	IsRead    bool            `json:"isRead"`
	IndexedAt time.Time       `json:"indexedAt"`
}

// ListNotificationsResponse is the listNotifications result page.
type ListNotificationsResponse struct {
	Cursor        string         `json:"cursor,omitempty"`
	Notifications []Notification `json:"notifications"`
}

// ListNotifications fetches one page of notifications. Pass an empty cursor
// for the first page; limit is clamped by the service to at most 100.
func (c *Client) ListNotifications(ctx context.Context, cursor string, limit int) (*ListNotificationsResponse, error) {
	params := url.Values{}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out ListNotificationsResponse
	if err := c.Query(ctx, nsidListNotifications, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountUnread returns the number of unread notifications upstream.
func (c *Client) CountUnread(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.Query(ctx, nsidGetUnreadCount, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// UpdateSeen marks notifications up to seenAt as read upstream.
func (c *Client) UpdateSeen(ctx context.Context, seenAt time.Time) error {
	input := struct {
		SeenAt string `json:"seenAt"`
	}{SeenAt: seenAt.UTC().Format(time.RFC3339)}
	return c.Procedure(ctx, nsidUpdateSeen, input, nil)
}

// TimelineResponse is one page of the authenticated user's home timeline.
// Feed items are kept raw; this client caches metadata, it does not render.
type TimelineResponse struct {
	Cursor string            `json:"cursor,omitempty"`
	Feed   []json.RawMessage `json:"feed"`
}

// GetTimeline fetches one page of the home timeline.
func (c *Client) GetTimeline(ctx context.Context, cursor string, limit int) (*TimelineResponse, error) {
	params := url.Values{}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out TimelineResponse
	if err := c.Query(ctx, nsidGetTimeline, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchPostsResponse is one page of post search results.
type SearchPostsResponse struct {
	Cursor string            `json:"cursor,omitempty"`
	Posts  []json.RawMessage `json:"posts"`
}

// SearchPosts searches posts matching q.
func (c *Client) SearchPosts(ctx context.Context, q, cursor string, limit int) (*SearchPostsResponse, error) {
	params := url.Values{}
	params.Set("q", q)
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out SearchPostsResponse
	if err := c.Query(ctx, nsidSearchPosts, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecordResponse identifies a freshly created repository record.
type CreateRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// CreateRecord writes a record (post, like, repost, follow) into repo under
// collection.
func (c *Client) CreateRecord(ctx context.Context, repo, collection string, record any) (*CreateRecordResponse, error) {
	input := struct {
		Repo       string `json:"repo"`
		Collection string `json:"collection"`
		Record     any    `json:"record"`
	}{Repo: repo, Collection: collection, Record: record}

	var out CreateRecordResponse
	if err := c.Procedure(ctx, nsidCreateRecord, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord removes the record at (repo, collection, rkey).
func (c *Client) DeleteRecord(ctx context.Context, repo, collection, rkey string) error {
	input := struct {
		Repo       string `json:"repo"`
		Collection string `json:"collection"`
		RKey       string `json:"rkey"`
	}{Repo: repo, Collection: collection, RKey: rkey}
	return c.Procedure(ctx, nsidDeleteRecord, input, nil)
}
