// Package preprocess runs the two preprocessing goals over a source tree.
//
// The copy goal materializes every source file whose eligibility directives
// hold for the target version, renaming its extension on the way. The replace
// goal rewrites @START/@END substitution markers in the files of selected
// directories and writes the result to the destination tree.
//
// Both goals share the same batch policy: files are resolved up front, an
// optional run lock guards the state directory, work is spread over a bounded
// number of workers, and per-file outcomes are collected into a
// models.RunResult in resolution order. A failing file either aborts the run
// or, with ContinueOnError, is aggregated into a *RunError.
package preprocess
