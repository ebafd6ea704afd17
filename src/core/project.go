package core

import (
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/please-build/elm-complete/src/cmap"
	"github.com/please-build/elm-complete/src/fs"
	"github.com/please-build/elm-complete/src/metrics"
)

// ErrNoProjectFound is returned when no directory above a file contains a project marker.
var ErrNoProjectFound = errors.New("no elm project directory found")

// A Resolver finds the project root enclosing a directory by walking upwards looking for a
// marker file. Results are cached for the lifetime of the Resolver; failures are not.
type Resolver struct {
	markers []string
	exists  func(string) bool
	cache   *cmap.Map[string, string]
	walks   singleflight.Group
	probes  atomic.Int64
}

// NewResolver returns a Resolver looking for any of the given markers (paths relative to a
// candidate directory) using the given existence check. A nil check means fs.PathExists.
func NewResolver(markers []string, exists func(string) bool) *Resolver {
	if len(markers) == 0 {
		markers = []string{DefaultProjectMarker}
	}
	if exists == nil {
		exists = fs.PathExists
	}
	return &Resolver{
		markers: markers,
		exists:  exists,
		cache:   cmap.New[string, string](cmap.DefaultShardCount, cmap.XXHash),
	}
}

// Resolve returns the project root for the directory described by the given path segments,
// for example ["home", "me", "app", "src"]. A leading volume segment such as "C:" is honoured.
// The filesystem root itself is never considered a project root.
func (r *Resolver) Resolve(segments []string) (string, error) {
	segments = cleanSegments(segments)
	if len(segments) == 0 {
		return "", ErrNoProjectFound
	}
	query := joinSegments(segments)
	if root, ok := r.cache.Get(query); ok {
		metrics.RecordCacheLookup(true)
		return root, nil
	}
	metrics.RecordCacheLookup(false)
	root, err, _ := r.walks.Do(query, func() (interface{}, error) {
		return r.walk(segments)
	})
	if err != nil {
		return "", err
	}
	return root.(string), nil
}

// ResolveFile returns the project root for the directory containing the given file.
func (r *Resolver) ResolveFile(filename string) (string, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}
	return r.Resolve(strings.Split(filepath.Dir(abs), string(filepath.Separator)))
}

// Probes returns the number of marker existence checks made so far.
func (r *Resolver) Probes() int64 {
	return r.probes.Load()
}

func (r *Resolver) walk(segments []string) (string, error) {
	// Dropping the volume would leave us probing the root of the drive.
	min := 0
	if isVolume(segments[0]) {
		min = 1
	}
	visited := make([]string, 0, len(segments))
	for n := len(segments); n > min; n-- {
		candidate := joinSegments(segments[:n])
		if root, ok := r.cache.Get(candidate); ok {
			r.remember(visited, root)
			return root, nil
		}
		visited = append(visited, candidate)
		if r.hasMarker(candidate) {
			log.Debug("Found project root %s", candidate)
			r.remember(visited, candidate)
			return candidate, nil
		}
	}
	log.Debug("No project root above %s", joinSegments(segments))
	return "", ErrNoProjectFound
}

func (r *Resolver) hasMarker(dir string) bool {
	for _, marker := range r.markers {
		r.probes.Add(1)
		if r.exists(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}

// remember caches every visited directory against the root found above them.
// Anything between them and the root was probed and had no marker, so they all share it.
func (r *Resolver) remember(dirs []string, root string) {
	for _, dir := range dirs {
		r.cache.Add(dir, root)
	}
}

func joinSegments(segments []string) string {
	sep := string(filepath.Separator)
	if isVolume(segments[0]) {
		return segments[0] + sep + filepath.Join(segments[1:]...)
	}
	return sep + filepath.Join(segments...)
}

func isVolume(segment string) bool {
	return segment != "" && filepath.VolumeName(segment) == segment
}

// cleanSegments drops empty and "." segments and resolves ".." lexically, as filepath.Clean
// does. A ".." can't climb above the root or a leading volume.
func cleanSegments(segments []string) []string {
	ret := make([]string, 0, len(segments))
	for _, s := range segments {
		switch s {
		case "", ".":
		case "..":
			if n := len(ret); n > 0 && !(n == 1 && isVolume(ret[0])) {
				ret = ret[:n-1]
			}
		default:
			ret = append(ret, s)
		}
	}
	return ret
}
