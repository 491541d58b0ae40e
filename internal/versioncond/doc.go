// Package versioncond evaluates the two inline version directive grammars
// used by the preprocessor.
//
// # Eligibility
//
// A configurable marker appearing on a line turns that line into a version
// condition. The text before the marker is the low clause and the text after
// it the high clause; each clause is read by keeping only digits and the
// characters '<' and '=':
//
//	// 100 <= VERSION < 200      low: 100 <= target, high: target < 200
//	// 150 = VERSION             low: 150 == target
//
// A file is copied only when it carries at least one condition line and
// every condition line holds for the target version.
//
// # Substitution
//
// Tokens of the form @START<op><prefix><version>@ and @END<op><prefix><version>@
// are rewritten per check version. When the comparison between the target
// and the token's version holds, the token is removed and the code between
// START and END stays active; otherwise START becomes an opening comment and
// END a closing comment, disabling the region:
//
//	@START>=V2@newApi();@END>=V2@
//
// With target 3 and check version 2 the line becomes "newApi();". With
// target 1 it becomes a commented-out block.
//
// All functions are pure: no state survives between calls.
package versioncond
