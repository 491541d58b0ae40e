package pathresolve

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Resolve returns every path beneath root that matches pattern and survives
// mode filtering. Returned paths are root joined with the matched names.
//
// A root that is not a directory yields a nil result and no error; callers
// are expected to have checked it. A segment that is not a valid regular
// expression fails with *PatternError as soon as a listing step needs it.
func Resolve(root, pattern string, mode MatchMode) ([]string, error) {
	if root == "" {
		root = "."
	}
	if kindOf(root) != kindDir {
		return nil, nil
	}

	r := &resolver{
		pattern:  pattern,
		mode:     mode,
		compiled: make(map[string]*regexp.Regexp),
	}
	matches, err := r.resolve(root, splitPattern(pattern), nil)
	if err != nil {
		return nil, err
	}
	return dedupe(matches), nil
}

// resolver carries the per-call state of one Resolve invocation.
type resolver struct {
	pattern  string
	mode     MatchMode
	compiled map[string]*regexp.Regexp
}

// resolve matches segs against the tree rooted at dir, appending to result.
// Recursion depth is bounded by the number of segments, not by tree depth.
func (r *resolver) resolve(dir string, segs []segment, result []string) ([]string, error) {
	// Base case: the remaining pattern names an existing path.
	if path, ok := literalPath(dir, segs); ok && exists(path) {
		if r.mode.accepts(kindOf(path)) {
			result = append(result, path)
		}
		return result, nil
	}

	cur := dir
	for i, seg := range segs {
		last := i == len(segs)-1

		if seg.wildcard {
			rest := trimWildcards(segs[i+1:])
			if len(rest) == 0 {
				entries, err := ListTree(cur, nil, r.mode)
				if err != nil {
					return result, err
				}
				return append(result, entries...), nil
			}

			dirs, err := dirClosure(cur)
			if err != nil {
				return result, err
			}
			return r.fanOut(dirs, rest, result)
		}

		// Consume segments that exist verbatim without listing anything.
		if name, ok := seg.literal(); ok {
			next := filepath.Join(cur, name)
			if exists(next) {
				cur = next
				continue
			}
		}

		re, err := r.compile(seg)
		if err != nil {
			return result, err
		}
		children, err := listChildren(cur, re)
		if err != nil {
			return result, err
		}

		if last {
			for _, child := range children {
				if r.mode.accepts(kindOf(child)) {
					result = append(result, child)
				}
			}
			return result, nil
		}

		var dirs []string
		for _, child := range children {
			if kindOf(child) == kindDir {
				dirs = append(dirs, child)
			}
		}
		return r.fanOut(dirs, segs[i+1:], result)
	}

	return result, nil
}

// fanOut resolves the residual pattern against each directory in turn.
func (r *resolver) fanOut(dirs []string, rest []segment, result []string) ([]string, error) {
	var err error
	for _, d := range dirs {
		result, err = r.resolve(d, rest, result)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *resolver) compile(seg segment) (*regexp.Regexp, error) {
	if re, ok := r.compiled[seg.raw]; ok {
		return re, nil
	}
	re, err := compileSegment(seg)
	if err != nil {
		return nil, NewPatternError(r.pattern, seg.source(), err)
	}
	r.compiled[seg.raw] = re
	return re, nil
}

// ListTree lists every entry beneath root, breadth-first, keeping entries
// whose name satisfies match (nil matches everything) and whose kind
// survives mode. Each directory is visited exactly once. A root that is not
// a directory yields a nil result and no error.
func ListTree(root string, match func(name string) bool, mode MatchMode) ([]string, error) {
	if kindOf(root) != kindDir {
		return nil, nil
	}

	result := make([]string, 0)
	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			kind := kindOf(path)
			if kind == kindOther {
				continue
			}
			if kind == kindDir {
				queue = append(queue, path)
			}
			if !mode.accepts(kind) {
				continue
			}
			if match != nil && !match(entry.Name()) {
				continue
			}
			result = append(result, path)
		}
	}

	return result, nil
}

// dirClosure returns root followed by every directory beneath it in
// breadth-first order.
func dirClosure(root string) ([]string, error) {
	dirs, err := ListTree(root, nil, DirsOnly)
	if err != nil {
		return nil, err
	}
	return append([]string{root}, dirs...), nil
}

// listChildren returns the direct children of dir whose names fully match re.
// A dir that is not a directory has no children.
func listChildren(dir string, re *regexp.Regexp) ([]string, error) {
	if kindOf(dir) != kindDir {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	var children []string
	for _, entry := range entries {
		if re.MatchString(entry.Name()) {
			children = append(children, filepath.Join(dir, entry.Name()))
		}
	}
	return children, nil
}

// dedupe drops repeated paths, keeping the first occurrence.
func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
