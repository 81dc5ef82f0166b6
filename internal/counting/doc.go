// Package counting provides byte-counting wrappers around an
// http.Request's body and an http.ResponseWriter, giving the track
// handler a live view of bytes_in/bytes_out/status_code for a Live
// entry.
//
// Built directly on io/net-http composition — the narrowest, most
// idiomatic standard-library shape for the concern.
package counting
