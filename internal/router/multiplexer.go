package router

import (
	"strings"

	"github.com/danmuck/microsync/internal/apps"
	"github.com/danmuck/microsync/internal/location"
	"github.com/danmuck/microsync/internal/observability"
	"github.com/danmuck/microsync/internal/pathcodec"
	"github.com/danmuck/microsync/internal/query"
	"github.com/rs/zerolog"
)

// hashRoot starts a hash query when a hash-placed write finds no hash at all.
const hashRoot = "#/"

// LocationQuery is the parsed view of the two query-bearing URL segments.
// A nil half means the segment carries no query.
type LocationQuery struct {
	Search *query.Query
	Hash   *query.Query
}

// QueryObjectFromURL parses search (minus a leading '?') and the part of
// hash after its first '?'.
func QueryObjectFromURL(search, hash string) LocationQuery {
	var lq LocationQuery
	if s := strings.TrimPrefix(search, "?"); s != "" {
		lq.Search = query.Parse(s)
	}
	if i := strings.IndexByte(hash, '?'); i >= 0 {
		lq.Hash = query.Parse(hash[i+1:])
	}
	return lq
}

// Result is the next shared URL after an attach or detach.
type Result struct {
	FullPath       string            `json:"fullPath"`
	AttachedToHash bool              `json:"isAttach2Hash"`
	Location       location.Location `json:"location"`
}

func newResult(loc location.Location, toHash bool) Result {
	return Result{FullPath: loc.FullPath(), AttachedToHash: toHash, Location: loc}
}

// Multiplexer reads and writes micro paths in the shared URL.
type Multiplexer struct {
	codec     pathcodec.Codec
	placement Placement
	logger    zerolog.Logger
}

type Option func(*Multiplexer)

func WithCodec(codec pathcodec.Codec) Option {
	return func(m *Multiplexer) { m.codec = codec }
}

func WithPlacement(p Placement) Option {
	return func(m *Multiplexer) { m.placement = p }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Multiplexer) { m.logger = logger }
}

// New builds a multiplexer using the heuristic placement and the default
// codec unless overridden.
func New(opts ...Option) *Multiplexer {
	m := &Multiplexer{
		placement: HeuristicPlacement{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.placement == nil {
		m.placement = HeuristicPlacement{}
	}
	return m
}

// Codec returns the codec used for path values.
func (m *Multiplexer) Codec() pathcodec.Codec {
	return m.codec
}

// MicroPathFromURL returns appName's decoded path. The hash query wins over
// the search query. An empty or bare hash value falls through to the search
// query; a repeated key reads as missing and stops the lookup.
func (m *Multiplexer) MicroPathFromURL(appName string, current location.Location) (string, bool) {
	if appName == "" {
		return "", false
	}
	lq := QueryObjectFromURL(current.Search, current.Hash)
	if len(lq.Hash.Values(appName)) > 1 {
		return "", false
	}
	raw, ok := lq.Hash.Get(appName)
	if !ok || raw == "" {
		raw, ok = lq.Search.Get(appName)
	}
	if !ok || raw == "" {
		return "", false
	}
	return m.codec.Decode(raw), true
}

// SetMicroPathToURL writes micro's full path under appName into the query
// chosen by the placement policy. Any copy of appName in the other query is
// dropped so an app lives in one half only.
func (m *Multiplexer) SetMicroPathToURL(appName string, micro, current location.Location) Result {
	if appName == "" {
		return newResult(current, false)
	}
	encoded := m.codec.Encode(micro.FullPath())
	lq := QueryObjectFromURL(current.Search, current.Hash)
	next := current

	toHash := m.placement.AttachToHash(current)
	if toHash {
		if lq.Hash == nil {
			lq.Hash = query.New()
		}
		lq.Hash.Set(appName, encoded)
		next.Hash = hashWithQuery(current.Hash, lq.Hash.Encode())
		if lq.Search.Del(appName) {
			next.Search = searchWithQuery(lq.Search.Encode())
		}
	} else {
		if lq.Search == nil {
			lq.Search = query.New()
		}
		lq.Search.Set(appName, encoded)
		next.Search = searchWithQuery(lq.Search.Encode())
		if lq.Hash.Del(appName) {
			next.Hash = hashWithQuery(current.Hash, lq.Hash.Encode())
		}
	}

	observability.RecordAttach(toHash)
	m.logger.Debug().
		Str("app", appName).
		Bool("hash", toHash).
		Str("full_path", next.FullPath()).
		Msg("micro path attached")
	return newResult(next, toHash)
}

// RemoveMicroPathFromURL drops appName from the hash query, or failing that
// from the search query. A query left empty loses its '?'. When appName is
// in neither, current comes back unchanged.
func (m *Multiplexer) RemoveMicroPathFromURL(appName string, current location.Location) Result {
	if appName == "" {
		return newResult(current, false)
	}
	lq := QueryObjectFromURL(current.Search, current.Hash)
	next := current
	fromHash, found := false, true

	switch {
	case lq.Hash.Del(appName):
		fromHash = true
		next.Hash = hashWithQuery(current.Hash, lq.Hash.Encode())
	case lq.Search.Del(appName):
		next.Search = searchWithQuery(lq.Search.Encode())
	default:
		found = false
	}

	observability.RecordDetach(fromHash, found)
	m.logger.Debug().
		Str("app", appName).
		Bool("hash", fromHash).
		Bool("found", found).
		Str("full_path", next.FullPath()).
		Msg("micro path detached")
	return newResult(next, fromHash)
}

// NoHashMicroPathFromURL resolves appName's path against baseURL and returns
// origin+pathname+search, or "" when there is no path or it cannot resolve.
func (m *Multiplexer) NoHashMicroPathFromURL(appName, baseURL string, current location.Location) string {
	microPath, ok := m.MicroPathFromURL(appName, current)
	if !ok {
		return ""
	}
	resolved, err := location.Resolve(microPath, baseURL)
	if err != nil {
		m.logger.Debug().Err(err).Str("app", appName).Msg("micro path not resolvable")
		return ""
	}
	return resolved.String()
}

// SyncApp attaches micro for an effective app and detaches the app
// otherwise, so prefetched or unknown apps never leave a path behind.
func (m *Multiplexer) SyncApp(appName string, micro, current location.Location, lookup apps.Lookup) Result {
	if apps.IsEffective(lookup, appName) {
		return m.SetMicroPathToURL(appName, micro, current)
	}
	return m.RemoveMicroPathFromURL(appName, current)
}

// hashWithQuery keeps hash up to its first '?' and appends qs. An empty qs
// drops the '?'; a hash reduced to a bare '#' becomes empty.
func hashWithQuery(hash, qs string) string {
	base := hash
	if i := strings.IndexByte(hash, '?'); i >= 0 {
		base = hash[:i]
	}
	if qs == "" {
		if base == "#" {
			return ""
		}
		return base
	}
	if base == "" {
		base = hashRoot
	}
	return base + "?" + qs
}

func searchWithQuery(qs string) string {
	if qs == "" {
		return ""
	}
	return "?" + qs
}
