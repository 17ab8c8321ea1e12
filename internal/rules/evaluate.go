package rules

import "strings"

// Allows reports whether operation ("read" or "write") is permitted against
// path by any top-level match block in the ruleset. path is the full
// canonical path the caller evaluates against — the engine is responsible
// for prefixing it with the conventional
// `/databases/(default)/documents/` segments before calling in, matching the
// pattern examples this grammar is written against.
func (rs *Ruleset) Allows(path, operation string) bool {
	segments := splitPath(path)
	for _, mb := range rs.Matches {
		if evalBlock(mb, segments, operation) {
			return true
		}
	}
	return false
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// evalBlock recursively attempts to consume pattern from remainder. A
// pattern-failure in mb doesn't propagate past this call — the caller tries
// sibling blocks, exactly as spec describes ("any pattern failure in a
// child falls back to other siblings").
func evalBlock(mb *MatchBlock, remainder []string, operation string) bool {
	rest, ok := matchPattern(mb.Pattern, remainder)
	if !ok {
		return false
	}
	if len(rest) == 0 {
		return allowsOperation(mb.Allows, operation)
	}
	for _, child := range mb.Children {
		if evalBlock(child, rest, operation) {
			return true
		}
	}
	return false
}

// matchPattern attempts to consume pattern's segments from the front of
// segments, returning the unconsumed remainder. A SegmentWildcard always
// succeeds and consumes everything left, including nothing.
func matchPattern(pattern []PatternSegment, segments []string) (rest []string, ok bool) {
	i := 0
	for _, seg := range pattern {
		if seg.Kind == SegmentWildcard {
			return nil, true
		}
		if i >= len(segments) {
			return nil, false
		}
		if seg.Kind == SegmentLiteral && segments[i] != seg.Literal {
			return nil, false
		}
		i++
	}
	return segments[i:], true
}

func allowsOperation(allows []Allow, operation string) bool {
	for _, a := range allows {
		if !a.ConditionTrue {
			continue
		}
		for _, op := range a.Operations {
			if op == operation || op == "match_all" {
				return true
			}
		}
	}
	return false
}
