package xmlskema

import (
	"strings"
	"sync"

	eng "github.com/reoring/xmlskema/internal/engine"
)

// Presence is the bit flag collected by WithMeta APIs.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Elements were routed to the field.
	PresenceNone                                // Optional field resolved to none.
	PresenceDefaultApplied                      // Default variant or empty sequence was applied.
)

// PresenceMap maps JSON Pointers over field names to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries the decoded value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// simple string interner for PresenceMap keys
var (
	_internMu   sync.RWMutex
	_internPool = map[string]string{}
)

func internString(s string) string {
	_internMu.RLock()
	if v, ok := _internPool[s]; ok {
		_internMu.RUnlock()
		return v
	}
	_internMu.RUnlock()

	_internMu.Lock()
	if v, ok := _internPool[s]; ok { // double-check
		_internMu.Unlock()
		return v
	}
	_internPool[s] = s
	_internMu.Unlock()
	return s
}

func presenceFromMarks(marks map[string]eng.Mark) PresenceMap {
	if marks == nil {
		return nil
	}
	pm := make(PresenceMap, len(marks))
	for k, m := range marks {
		var p Presence
		if m&eng.MarkSeen != 0 {
			p |= PresenceSeen
		}
		if m&eng.MarkNone != 0 {
			p |= PresenceNone
		}
		if m&eng.MarkDefault != 0 {
			p |= PresenceDefaultApplied
		}
		pm[k] = p
	}
	return pm
}

// underPath reports whether path is prefix or lies below it.
func underPath(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func applyPresenceOptions(pm PresenceMap, popt PresenceOpt, ropt PathRenderOpt) PresenceMap {
	if pm == nil {
		return nil
	}
	if !popt.Collect {
		return nil
	}
	includes := popt.Include
	excludes := popt.Exclude

	filtered := make(PresenceMap, len(pm))

	shouldInclude := func(path string) bool {
		if len(includes) > 0 {
			ok := false
			for _, p := range includes {
				if underPath(path, p) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		for _, p := range excludes {
			if underPath(path, p) {
				return false
			}
		}
		return true
	}

	for k, v := range pm {
		if !shouldInclude(k) {
			continue
		}
		key := k
		if ropt.Intern {
			key = internString(k)
		}
		filtered[key] = v
	}
	return filtered
}
