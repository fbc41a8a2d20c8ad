// Package gallery implements the file pairing and caching engine behind
// the gallery viewer API.
//
// It scans a data directory for PNG images and their like-named CSV
// companions, caches the scan result with TTL and directory-fingerprint
// staleness detection, and produces JPEG thumbnails persisted to a
// sidecar cache directory.
package gallery
