// Package pathresolve resolves path patterns against a real directory tree.
//
// A pattern is a "/"-separated path whose segments are regular expressions
// matched against the full name of a single directory entry. The literal
// segment "**" stands for zero or more intermediate directory levels.
//
// # Pattern language
//
//   - Each segment is a Go (RE2) regular expression, anchored at both ends.
//   - "**" expands to every directory beneath the point where it appears.
//     As the final segment it matches every entry beneath that point.
//   - A backslash meant for the regular expression itself must be written
//     doubled ("\\") so it cannot be confused with a path separator on
//     backslash-separated filesystems: ".*\\.java" is the regular
//     expression ".*\.java", and "\\\\" matches one literal backslash.
//
// # Resolution
//
// Resolution prefers the filesystem over the regex engine: if the whole
// pattern names an existing path it is returned directly, and leading
// segments that exist verbatim are consumed without listing directories.
// Only the first missing segment, or the first "**", switches to filtered
// directory listing.
//
//	files, err := pathresolve.Resolve("src", `**/.*\\.java`, pathresolve.FilesOnly)
//	if err != nil {
//	    var perr *pathresolve.PatternError
//	    if errors.As(err, &perr) {
//	        log.Fatalf("bad segment %q", perr.Segment)
//	    }
//	}
//
// Results are deterministic: fan-out follows segment order, "**" expansion
// is breadth-first, and directories are listed in lexical order. Duplicate
// paths produced by overlapping expansions are reported once.
package pathresolve
