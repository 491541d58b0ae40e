package versioncond

import (
	"errors"
	"strconv"
	"strings"
)

// Clause is one side of an eligibility condition.
type Clause struct {
	Op      Operator
	Version int
}

// Condition is a parsed eligibility line. Low reads "Version Op target",
// High reads "target Op Version". At least one side is set.
type Condition struct {
	Low  *Clause
	High *Clause
}

// Eval reports whether every present clause holds for target.
func (c Condition) Eval(target int) bool {
	if c.Low != nil && !compare(c.Low.Op, c.Low.Version, target) {
		return false
	}
	if c.High != nil && !compare(c.High.Op, target, c.High.Version) {
		return false
	}
	return true
}

// compare applies op to left and right. An operator outside <, <= and =
// places no constraint.
func compare(op Operator, left, right int) bool {
	fn, ok := clauseComparisons[op]
	if !ok {
		return true
	}
	return fn(left, right)
}

// ParseCondition parses the condition carried by line. The boolean result
// is false when marker does not occur in line.
func ParseCondition(line, marker string) (Condition, bool, error) {
	if marker == "" {
		return Condition{}, false, NewConditionError(line, "empty marker", nil)
	}
	if !strings.Contains(line, marker) {
		return Condition{}, false, nil
	}

	pieces := splitOnMarker(line, marker)
	if len(pieces) != 1 && len(pieces) != 2 {
		return Condition{}, true, NewConditionError(line, "marker must split the line into one or two clauses", nil)
	}

	var cond Condition
	var err error
	if cond.Low, err = parseClause(line, pieces[0]); err != nil {
		return Condition{}, true, err
	}
	if len(pieces) == 2 {
		if cond.High, err = parseClause(line, pieces[1]); err != nil {
			return Condition{}, true, err
		}
	}

	if cond.Low == nil && cond.High == nil {
		return Condition{}, true, NewConditionError(line, "no comparison found", nil)
	}
	return cond, true, nil
}

// IsEligible evaluates a single line against target. eligible is only
// meaningful when hasCondition is true.
func IsEligible(line, marker string, target int) (hasCondition, eligible bool, err error) {
	cond, ok, err := ParseCondition(line, marker)
	if err != nil || !ok {
		return ok, false, err
	}
	return true, cond.Eval(target), nil
}

// EvaluateLines decides whether a file is eligible: at least one line must
// carry the marker and every such line must hold. All lines are checked, so
// a malformed condition fails the file even after another line vetoed it.
func EvaluateLines(lines []string, marker string, target int) (bool, error) {
	found := false
	eligible := true

	for i, line := range lines {
		has, ok, err := IsEligible(line, marker, target)
		if err != nil {
			var cerr *ConditionError
			if errors.As(err, &cerr) {
				cerr.LineNo = i + 1
			}
			return false, err
		}
		if !has {
			continue
		}
		found = true
		eligible = eligible && ok
	}

	return found && eligible, nil
}

// splitOnMarker splits line around every occurrence of marker and drops
// trailing empty pieces, so a marker at the end of a line adds no clause.
func splitOnMarker(line, marker string) []string {
	pieces := strings.Split(line, marker)
	for len(pieces) > 0 && pieces[len(pieces)-1] == "" {
		pieces = pieces[:len(pieces)-1]
	}
	return pieces
}

// parseClause keeps the digits and the '<' and '=' characters of piece.
// A piece missing either part yields no clause. Operator sequences such as
// "==" still form a clause; Eval treats them as always holding.
func parseClause(line, piece string) (*Clause, error) {
	var digits, ops strings.Builder
	for _, c := range piece {
		switch {
		case c >= '0' && c <= '9':
			digits.WriteRune(c)
		case c == '<' || c == '=':
			ops.WriteRune(c)
		}
	}

	if digits.Len() == 0 || ops.Len() == 0 {
		return nil, nil
	}

	op := Operator(ops.String())

	version, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil, NewConditionError(line, "version out of range", err)
	}

	return &Clause{Op: op, Version: version}, nil
}
