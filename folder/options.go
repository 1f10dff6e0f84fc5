package folder

import (
	"strings"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru"

	"github.com/bobg/hub/meta"
)

// Options are the filter rules of a folder,
// or of one service's view of a folder.
// A missing option means "no restriction."
type Options struct {
	// Mode holds the letters r (the party provides files) and w (the party receives them).
	Mode string `json:"mode,omitempty"`

	FileSize *SizeRange `json:"file_size,omitempty"`

	// Mimetypes, Blacklist and Whitelist are glob patterns.
	// A nil list imposes nothing,
	// but an empty Mimetypes or Whitelist list rejects everything.
	Mimetypes []string `json:"mimetypes"`
	Blacklist []string `json:"blacklist"`
	Whitelist []string `json:"whitelist"`
}

// SizeRange bounds file sizes, inclusively.
// Each bound is a number or a string understood by ParseSize.
type SizeRange struct {
	Min interface{} `json:"min,omitempty"`
	Max interface{} `json:"max,omitempty"`
}

// Perm is the permission a party needs for a file.
type Perm byte

const (
	// AnyPerm skips the mode check.
	AnyPerm Perm = 0

	// Provide is needed to be the source of a file.
	Provide Perm = 'r'

	// Receive is needed to be the target of a file.
	Receive Perm = 'w'
)

// Reason says why a file was rejected.
type Reason string

const (
	OK             Reason = ""
	IgnoredMode    Reason = "ignored_mode"
	IgnoredSize    Reason = "ignored_size"
	IgnoredMime    Reason = "ignored_mimetype"
	Blacklisted    Reason = "blacklisted"
	NotWhitelisted Reason = "not_whitelisted"
)

// AssertOptions checks f against opts,
// in order: mode (unless perm is AnyPerm), size bounds, mimetypes, blacklist, whitelist.
// Nil opts accept everything.
func AssertOptions(opts *Options, f *meta.File, perm Perm) (bool, Reason) {
	if opts == nil {
		return true, OK
	}

	if perm != AnyPerm && opts.Mode != "" && !strings.ContainsRune(opts.Mode, rune(perm)) {
		return false, IgnoredMode
	}

	if fs := opts.FileSize; fs != nil {
		if min, ok := ParseSize(fs.Min); ok && f.Size < min {
			return false, IgnoredSize
		}
		if max, ok := ParseSize(fs.Max); ok && f.Size > max {
			return false, IgnoredSize
		}
	}

	if opts.Mimetypes != nil && !matchAny(opts.Mimetypes, f.Mimetype) {
		return false, IgnoredMime
	}

	if matchAny(opts.Blacklist, f.Filename) {
		return false, Blacklisted
	}

	if opts.Whitelist != nil && !matchAny(opts.Whitelist, f.Filename) {
		return false, NotWhitelisted
	}

	return true, OK
}

var globs, _ = lru.New(1024) // pattern->glob.Glob (nil if the pattern does not compile)

// Match tells whether name matches the glob pattern.
// Wildcards match across slashes:
// "*.mp3" matches "foo/bar/lol.mp3".
func Match(pattern, name string) bool {
	var g glob.Glob
	if got, ok := globs.Get(pattern); ok {
		g, _ = got.(glob.Glob)
	} else {
		g, _ = glob.Compile(pattern)
		globs.Add(pattern, g)
	}
	return g != nil && g.Match(name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if Match(p, name) {
			return true
		}
	}
	return false
}
