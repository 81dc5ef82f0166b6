// Package render frames a show response body in one of four formats:
// json, legacy, jsonp, dump. Grounded on the original C plugin's
// GString-building style (g_string_append_len), translated here to a
// strings.Builder that assembles the wrapper around an already-encoded
// JSON body rather than building JSON and its wrapper in one pass.
package render
