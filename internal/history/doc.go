// Package history turns raw price-history payloads into fixed-interval series.
//
// The pipeline has three stages:
//
//   - ParseTimestamp converts a loosely typed value into Unix epoch seconds.
//   - ExtractSamples pulls valid (timestamp, price) pairs out of a decoded JSON
//     payload and sorts them by time.
//   - Resample keeps the last observation of every fixed-width time bucket.
//
// Malformed records are dropped, never reported. Third-party payloads vary in
// shape and a partial series is more useful than none.
package history
