package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Error distinguishes a config-time error — surfaced synchronously at
// server startup, aborting load — from the soft, never-surfaced
// request-time errors produced elsewhere.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func configErrorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// DefaultTTL is progress.ttl's default of 30 seconds.
const DefaultTTL = 30 * time.Second

// knownMethods fixes the bit ordinal used by MethodSet, mirroring the
// original C plugin's "1 << LI_HTTP_METHOD_*" bitset scheme.
var knownMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

// MethodSet is a bitset over HTTP method codes, the set of methods whose
// requests should be tracked.
type MethodSet uint32

// Has reports whether method is a member of the set. An unrecognized
// method name is never a member.
func (s MethodSet) Has(method string) bool {
	idx := slices.Index(knownMethods, method)
	if idx < 0 {
		return false
	}
	return s&(1<<uint(idx)) != 0
}

// ParseMethodSet builds a MethodSet from HTTP method names, matching
// case-sensitively against the server's method table. An unrecognized
// name is a config error.
func ParseMethodSet(methods []string) (MethodSet, error) {
	var set MethodSet
	for _, name := range methods {
		idx := slices.Index(knownMethods, name)
		if idx < 0 {
			return 0, configErrorf("progress.methods: unknown method: %s", name)
		}
		set |= 1 << uint(idx)
	}
	return set, nil
}

// DefaultMethodSet is progress.methods' default: POST only.
func DefaultMethodSet() MethodSet {
	set, _ := ParseMethodSet([]string{http.MethodPost})
	return set
}

// Format selects how progress.show renders its response body.
type Format string

const (
	FormatJSON   Format = "json"
	FormatLegacy Format = "legacy"
	FormatJSONP  Format = "jsonp"
	// FormatDump is reserved; current semantics render as JSON, treating
	// "dump" as an alias for "render JSON."
	FormatDump Format = "dump"
)

// ParseFormat validates a progress.show format argument. An empty string
// defaults to FormatJSON, matching "Missing argument = json."
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatLegacy, FormatJSONP, FormatDump:
		return Format(s), nil
	default:
		return "", configErrorf("progress.show: unknown format %q", s)
	}
}

// Action selects whether a route installs progress.track or
// progress.show.
type Action string

const (
	ActionTrack Action = "track"
	ActionShow  Action = "show"
)

// Route binds an HTTP path to either the track or the show action,
// mirroring a host server's "if req.path == ... { progress.track|show }"
// config block.
type Route struct {
	Path   string `yaml:"path"`
	Action string `yaml:"action"`
	Format string `yaml:"format,omitempty"`
}

// ParsedRoute is a Route after validation. A show route's Format is
// resolved to a concrete Format (json when omitted); a track route's
// Format is empty.
type ParsedRoute struct {
	Path   string
	Action Action
	Format Format
}

// Config is progressd's full configuration surface: progress.ttl,
// progress.debug, progress.methods, progress.track, and progress.show,
// expressed as a single YAML-loadable document instead of a sequence of
// config-file directives.
type Config struct {
	TTL     time.Duration `yaml:"ttl"`
	Debug   bool          `yaml:"debug"`
	Methods []string      `yaml:"methods"`
	Routes  []Route       `yaml:"routes"`

	// MethodSet and ParsedRoutes are derived by Load/Parse; never set
	// directly from YAML.
	MethodSet    MethodSet     `yaml:"-"`
	ParsedRoutes []ParsedRoute `yaml:"-"`
}

// rawConfig mirrors Config's YAML shape before defaults are applied,
// using pointer fields to distinguish "absent" from "zero value."
type rawConfig struct {
	TTL     *string  `yaml:"ttl"`
	Debug   *bool    `yaml:"debug"`
	Methods []string `yaml:"methods"`
	Routes  []Route  `yaml:"routes"`
}

// Load reads and validates a YAML config file at path. Any structural or
// semantic problem is returned as a *Error; callers should treat a
// *Error as fatal at startup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configErrorf("reading config %s: %v", path, err)
	}
	return Parse(data)
}

// Parse validates and normalizes a YAML document's bytes into a Config.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, configErrorf("parsing config: %v", err)
	}

	cfg := &Config{Debug: false, TTL: DefaultTTL}

	if raw.TTL != nil {
		d, err := time.ParseDuration(*raw.TTL)
		if err != nil {
			return nil, configErrorf("progress.ttl expects a duration, got %q: %v", *raw.TTL, err)
		}
		if d <= 0 {
			return nil, configErrorf("progress.ttl expects a positive duration, got %q", *raw.TTL)
		}
		cfg.TTL = d
	}

	if raw.Debug != nil {
		cfg.Debug = *raw.Debug
	}

	if len(raw.Methods) == 0 {
		cfg.MethodSet = DefaultMethodSet()
	} else {
		set, err := ParseMethodSet(raw.Methods)
		if err != nil {
			return nil, err
		}
		cfg.MethodSet = set
		cfg.Methods = raw.Methods
	}

	parsed, err := parseRoutes(raw.Routes)
	if err != nil {
		return nil, err
	}
	cfg.Routes = raw.Routes
	cfg.ParsedRoutes = parsed

	return cfg, nil
}

func parseRoutes(routes []Route) ([]ParsedRoute, error) {
	parsed := make([]ParsedRoute, 0, len(routes))
	for _, r := range routes {
		if r.Path == "" {
			return nil, configErrorf("route is missing a path")
		}
		switch Action(r.Action) {
		case ActionTrack:
			if r.Format != "" {
				return nil, configErrorf("progress.track doesn't expect any parameters, got format %q on %s", r.Format, r.Path)
			}
			parsed = append(parsed, ParsedRoute{Path: r.Path, Action: ActionTrack})
		case ActionShow:
			format, err := ParseFormat(r.Format)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, ParsedRoute{Path: r.Path, Action: ActionShow, Format: format})
		default:
			return nil, configErrorf("route %s: unknown action %q, want track or show", r.Path, r.Action)
		}
	}
	return parsed, nil
}
