package versioncond

// Operator is a comparison operator appearing in a directive.
type Operator string

const (
	OpEqual        Operator = "="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
)

// Sign is the sign of target - checkVersion.
type Sign int

const (
	SignOlder Sign = -1 // target is older than the check version
	SignSame  Sign = 0
	SignNewer Sign = 1 // target is newer than the check version
)

// Compare returns the sign of target - check.
func Compare(target, check int) Sign {
	switch {
	case target > check:
		return SignNewer
	case target < check:
		return SignOlder
	default:
		return SignSame
	}
}

// Outcome is what a substitution marker turns into.
type Outcome int

const (
	// Keep removes the marker, leaving the enclosed code active.
	Keep Outcome = iota
	// Comment replaces the marker with a comment delimiter.
	Comment
)

// substitutionOperators is the order in which marker variants are rewritten.
var substitutionOperators = []Operator{
	OpEqual,
	OpGreater,
	OpGreaterEqual,
	OpLess,
	OpLessEqual,
}

// outcomes is indexed by operator, then by Sign+1 (older, same, newer).
var outcomes = map[Operator][3]Outcome{
	//                 older    same     newer
	OpEqual:        {Comment, Keep, Comment},
	OpGreater:      {Comment, Comment, Keep},
	OpLess:         {Keep, Comment, Comment},
	OpGreaterEqual: {Comment, Keep, Keep},
	OpLessEqual:    {Keep, Keep, Comment},
}

// OutcomeFor looks up the substitution outcome for op at the given sign.
func OutcomeFor(op Operator, sign Sign) Outcome {
	return outcomes[op][int(sign)+1]
}

// clauseComparisons holds the operators allowed in eligibility clauses.
// The function receives the left and right operands in reading order.
var clauseComparisons = map[Operator]func(left, right int) bool{
	OpLess:      func(left, right int) bool { return left < right },
	OpLessEqual: func(left, right int) bool { return left <= right },
	OpEqual:     func(left, right int) bool { return left == right },
}
