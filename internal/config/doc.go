// Package config implements the configuration surface for the
// upload-progress tracking service: TTL, debug flag, tracked-methods
// bitset, and the track/show route bindings, loaded from a YAML file.
//
// The original plugin host bound these from its own config DSL
// (progress.ttl, progress.methods, progress.track, progress.show
// [format]); that DSL and its surrounding embedding server are out of
// scope here. What is in scope is the shape of the bindings themselves,
// so this package gives them a concrete Go home: a config.Config struct
// loaded via gopkg.in/yaml.v3 rather than hand-rolling a parser or
// reaching for a new library.
//
// All validation (TTL must be positive, unknown method name, unknown
// format, a format given to a track route) is a config error: surfaced
// synchronously by Load, never at request time.
package config
