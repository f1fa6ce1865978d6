package model

import (
	"strconv"
	"strings"
)

// ObjectKey identifies a source cluster object by namespace and name.
type ObjectKey struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
}

func (k ObjectKey) String() string {
	return k.Namespace + "/" + k.Name
}

type PathKind int

const (
	// PathNone means no path was declared, the rule matches on host only.
	PathNone PathKind = iota
	PathRegex
	PathPrefix
	PathExact
)

func (k PathKind) String() string {
	switch k {
	case PathRegex:
		return "regex"
	case PathPrefix:
		return "prefix"
	case PathExact:
		return "exact"
	}
	return "none"
}

// PathMatch is a resolved path matcher. Kind is never ambiguous, the
// parser decides it before a rule leaves the ingress package.
type PathMatch struct {
	Kind  PathKind `json:"kind" yaml:"kind"`
	Value string   `json:"value" yaml:"value"`
}

// Rank orders matcher kinds by specificity: exact > prefix > regex > none.
func (m PathMatch) Rank() int {
	return int(m.Kind)
}

// surfacePrefix normalizes a host-only match to the "/" prefix, which
// accepts the same path surface.
func (m PathMatch) surfacePrefix() string {
	if m.Kind == PathNone {
		return "/"
	}
	return m.Value
}

// Covers reports whether this matcher accepts at least the path surface
// of other with equal-or-higher specificity. An exact matcher covers
// only the identical path. A prefix matcher Q covers a prefix P iff Q is
// a prefix of P or equal to P. A matcher of lower kind never covers a
// higher one: it could lose priority fights the covered matcher used to
// win. Regex matchers never cover and are never covered.
func (m PathMatch) Covers(other PathMatch) bool {
	if m.Kind == PathRegex || other.Kind == PathRegex {
		return false
	}
	if m.Rank() < other.Rank() {
		return false
	}
	if m.Kind == PathExact {
		return other.Kind == PathExact && m.Value == other.Value
	}
	// Prefix and host-only matchers share prefix semantics.
	return strings.HasPrefix(other.surfacePrefix(), m.surfacePrefix())
}

// MoreSpecific reports whether m is strictly more specific than other:
// a higher matcher kind wins, longer value breaks ties within a kind.
func (m PathMatch) MoreSpecific(other PathMatch) bool {
	if m.Rank() != other.Rank() {
		return m.Rank() > other.Rank()
	}
	return len(m.Value) > len(other.Value)
}

// HostMatch is a resolved host matcher. An empty pattern matches any host.
type HostMatch struct {
	Pattern string `json:"pattern" yaml:"pattern"`
}

func (h HostMatch) IsAny() bool {
	return h.Pattern == ""
}

func (h HostMatch) IsWildcard() bool {
	return strings.HasPrefix(h.Pattern, "*.")
}

// Rank orders host matchers by specificity: exact > wildcard > any.
func (h HostMatch) Rank() int {
	switch {
	case h.IsAny():
		return 0
	case h.IsWildcard():
		return 1
	}
	return 2
}

// Covers reports whether this host matcher accepts at least the host
// surface of other with equal-or-higher specificity. A less specific
// pattern that happens to accept the traffic (a wildcard over an exact
// host) does not count as equal-or-more-specific, and a more specific
// pattern does not accept the full surface, so coverage reduces to
// pattern equality.
func (h HostMatch) Covers(other HostMatch) bool {
	return strings.EqualFold(h.Pattern, other.Pattern)
}

// BackendPort is a service port reference, either by number or by name.
type BackendPort struct {
	Number int32  `json:"number,omitempty" yaml:"number,omitempty"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

func (p BackendPort) String() string {
	if p.Number > 0 {
		return strconv.Itoa(int(p.Number))
	}
	return p.Name
}

// Backend is a reference to the service that receives matched traffic.
type Backend struct {
	Namespace string      `json:"namespace" yaml:"namespace"`
	Service   string      `json:"service" yaml:"service"`
	Port      BackendPort `json:"port" yaml:"port"`
}

func (b Backend) Equal(other Backend) bool {
	return b.Namespace == other.Namespace &&
		b.Service == other.Service &&
		b.Port == other.Port
}

func (b Backend) String() string {
	return b.Namespace + "/" + b.Service + ":" + b.Port.String()
}

type MiddlewareKind string

const (
	MiddlewareStripPrefix   MiddlewareKind = "stripPrefix"
	MiddlewareReplacePath   MiddlewareKind = "replacePath"
	MiddlewareRedirectRegex MiddlewareKind = "redirectRegex"
	MiddlewareIPWhiteList   MiddlewareKind = "ipWhiteList"
	MiddlewareBasicAuth     MiddlewareKind = "basicAuth"
)

// Middleware is the canonical payload of one translated middleware,
// exactly one field group is populated depending on Kind.
type Middleware struct {
	Kind MiddlewareKind `json:"kind" yaml:"kind"`

	Prefixes     []string `json:"prefixes,omitempty" yaml:"prefixes,omitempty"`
	Path         string   `json:"path,omitempty" yaml:"path,omitempty"`
	Regex        string   `json:"regex,omitempty" yaml:"regex,omitempty"`
	Replacement  string   `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	SourceRanges []string `json:"sourceRanges,omitempty" yaml:"sourceRanges,omitempty"`
	Secret       string   `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// MiddlewareObject is a named middleware ready to be referenced by routes
// and rendered as a manifest. Names are assigned by the translator (or by
// the resolver for residual routes) and are stable across runs.
type MiddlewareObject struct {
	Name       string     `json:"name" yaml:"name"`
	Middleware Middleware `json:"middleware" yaml:"middleware"`
}

// CanonicalRule is the normalized form of one legacy (host, path) entry.
type CanonicalRule struct {
	Source      ObjectKey
	Host        HostMatch
	Path        PathMatch
	Backend     Backend
	Middlewares []Middleware
	// Weight defaults to 1, a legacy priority annotation raises it.
	Weight int
	// Order is the declaration position of this entry across the whole
	// input snapshot, used as the final routing tie-break.
	Order int
	// UntranslatedOptions lists recognized annotation keys that have no
	// new-format equivalent; the translator reports and drops them.
	UntranslatedOptions []string
}

// LegacyEntry is one (host, path, backend) entry of a legacy rule as it
// behaves today, kept so the resolver can decide coverage and reproduce
// uncovered behavior verbatim.
type LegacyEntry struct {
	Host        HostMatch
	Path        PathMatch
	Backend     Backend
	Middlewares []Middleware
}

// LegacyRule is the parsed behavior snapshot of one legacy object.
type LegacyRule struct {
	Source  ObjectKey
	Entries []LegacyEntry
	Order   int
	// Opaque marks objects whose behavior could not be fully modeled
	// (parse failures). They are always retained as fallback and never
	// get residual routes, because a residual could not reproduce the
	// unknown parts.
	Opaque bool
}
