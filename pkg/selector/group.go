package selector

import "fmt"

// Group is a run of selectors sharing their first segment. SubPaths holds
// the remainder of each selector, in input order.
type Group struct {
	Key      string
	SubPaths []Path
}

// Partition splits sorted, duplicate-free paths into groups keyed by their
// first segment. Groups come out in first-appearance order of their keys,
// which for sorted input is lexicographic.
//
// The empty path may only appear on its own, both in paths and in the tails
// of any group.
func Partition(paths []Path) ([]Group, error) {
	if err := checkExclusive(paths, nil); err != nil {
		return nil, err
	}
	var groups []Group
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p.IsEmpty() {
			return nil, fmt.Errorf("%w: the whole-value selector has no groups", ErrInvalidSelectorSet)
		}
		key, tail := p[0], p[1:]
		if n := len(groups); n > 0 && groups[n-1].Key == key {
			groups[n-1].SubPaths = append(groups[n-1].SubPaths, tail)
			continue
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: key %q is not contiguous, selectors must be sorted", ErrInvalidSelectorSet, key)
		}
		seen[key] = struct{}{}
		groups = append(groups, Group{Key: key, SubPaths: []Path{tail}})
	}
	for _, g := range groups {
		if err := checkExclusive(g.SubPaths, Path{g.Key}); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func checkExclusive(paths []Path, prefix Path) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: no selectors under %q", ErrInvalidSelectorSet, prefix.String())
	}
	if len(paths) == 1 {
		return nil
	}
	for _, p := range paths {
		if p.IsEmpty() {
			return fmt.Errorf("%w: %q is selected whole and by %d other selectors", ErrInvalidSelectorSet, prefix.String(), len(paths)-1)
		}
	}
	return nil
}
