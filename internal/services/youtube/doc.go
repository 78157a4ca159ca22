// Package youtube wraps the YouTube Data API v3 videos endpoint used for
// primary and batched metadata lookups.
//
// Only the fields the table renders are decoded: snippet title, description
// and channel, the ISO-8601 duration, the caption flag, and view count. The
// caption flag reflects uploaded captions only; automatic captions are not
// reported by the API.
package youtube
