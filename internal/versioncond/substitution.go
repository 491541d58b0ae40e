package versioncond

import (
	"regexp"
	"strconv"
	"strings"
)

// Default comment delimiters written in place of unsatisfied markers.
const (
	DefaultCommentStart = "/* **Version Difference Comment Start**"
	DefaultCommentEnd   = "**Version Difference Comment End** */"
)

// Role says whether a marker opens or closes a versioned region.
type Role string

const (
	RoleStart Role = "START"
	RoleEnd   Role = "END"
)

// Directive is one substitution marker.
type Directive struct {
	Role    Role
	Op      Operator
	Prefix  string
	Version int
}

// Token renders the directive as it appears in source text.
func (d Directive) Token() string {
	return "@" + string(d.Role) + string(d.Op) + d.Prefix + strconv.Itoa(d.Version) + "@"
}

// Rewriter resolves substitution markers for one prefix. A Rewriter is safe
// for concurrent use as long as its fields are not modified.
type Rewriter struct {
	Prefix       string
	CommentStart string
	CommentEnd   string

	// unresolved matches any marker carrying unresolvedPrefix; set by NewRewriter.
	unresolved       *regexp.Regexp
	unresolvedPrefix string
}

// NewRewriter creates a Rewriter using the default comment delimiters.
func NewRewriter(prefix string) *Rewriter {
	return &Rewriter{
		Prefix:           prefix,
		CommentStart:     DefaultCommentStart,
		CommentEnd:       DefaultCommentEnd,
		unresolved:       markerPattern(prefix),
		unresolvedPrefix: prefix,
	}
}

func markerPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`@(?:START|END)(?:>=|<=|=|>|<)` + regexp.QuoteMeta(prefix) + `[0-9]+@`)
}

// RewriteLine resolves every marker of every check version on line. Check
// versions are applied in order, each pass working on the previous output.
// Tokens that do not match exactly are left untouched.
func (r *Rewriter) RewriteLine(line string, target int, checkVersions []int) string {
	if !strings.Contains(line, "@") {
		return line
	}

	for _, check := range checkVersions {
		sign := Compare(target, check)
		for _, op := range substitutionOperators {
			outcome := OutcomeFor(op, sign)
			for _, role := range []Role{RoleStart, RoleEnd} {
				token := Directive{Role: role, Op: op, Prefix: r.Prefix, Version: check}.Token()
				line = strings.ReplaceAll(line, token, r.replacement(role, outcome))
			}
		}
	}
	return line
}

// RewriteLines applies RewriteLine to every line and returns a new slice.
func (r *Rewriter) RewriteLines(lines []string, target int, checkVersions []int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = r.RewriteLine(line, target, checkVersions)
	}
	return out
}

// FindUnresolved returns the first marker carrying this rewriter's prefix
// that is still present in lines, or nil when none is left.
func (r *Rewriter) FindUnresolved(lines []string) *DirectiveError {
	re := r.unresolved
	if re == nil || r.unresolvedPrefix != r.Prefix {
		re = markerPattern(r.Prefix)
	}
	for i, line := range lines {
		if token := re.FindString(line); token != "" {
			return &DirectiveError{LineNo: i + 1, Token: token}
		}
	}
	return nil
}

func (r *Rewriter) replacement(role Role, outcome Outcome) string {
	if outcome == Keep {
		return ""
	}
	if role == RoleStart {
		return r.CommentStart
	}
	return r.CommentEnd
}

// RewriteLine resolves markers on a single line using the default comment
// delimiters.
func RewriteLine(line string, target int, checkVersions []int, prefix string) string {
	return NewRewriter(prefix).RewriteLine(line, target, checkVersions)
}

// RewriteLines resolves markers on every line using the default comment
// delimiters.
func RewriteLines(lines []string, target int, checkVersions []int, prefix string) []string {
	return NewRewriter(prefix).RewriteLines(lines, target, checkVersions)
}
