package engine

import (
	"strconv"

	"github.com/reoring/xmlskema/xmltree"
)

// Limits bounds the element tree accepted by a decode. Zero disables a
// limit.
type Limits struct {
	MaxDepth    int
	MaxElements int
}

// CheckLimits walks root once and fails on the first element that exceeds
// the configured depth or element count. The document node itself is not
// counted. Paths are JSON Pointers over element tags.
func CheckLimits(root *xmltree.Element, lim Limits) error {
	if root == nil || (lim.MaxDepth <= 0 && lim.MaxElements <= 0) {
		return nil
	}
	w := &limitWalker{lim: lim}
	if root.IsDocument() {
		for _, c := range root.Children {
			if err := w.walk(c, "", 1); err != nil {
				return err
			}
		}
		return nil
	}
	return w.walk(root, "", 1)
}

type limitWalker struct {
	lim   Limits
	count int
}

func (w *limitWalker) walk(el *xmltree.Element, parent string, depth int) error {
	path := joinJSONPointer(parent, el.Tag)
	if w.lim.MaxDepth > 0 && depth > w.lim.MaxDepth {
		return issue(CodeLimitExceeded, path, "max depth exceeded",
			map[string]any{"limit": w.lim.MaxDepth}, nil)
	}
	w.count++
	if w.lim.MaxElements > 0 && w.count > w.lim.MaxElements {
		return issue(CodeLimitExceeded, path, "max elements exceeded ("+strconv.Itoa(w.lim.MaxElements)+")",
			map[string]any{"limit": w.lim.MaxElements}, nil)
	}
	for _, c := range el.Children {
		if err := w.walk(c, path, depth+1); err != nil {
			return err
		}
	}
	return nil
}
