// Package researcher implements the web research report graph:
//
//	task -> planner -> researcher -> publisher -> END
//
// The planner picks a researcher persona, the researcher node asks the model
// for exactly four distinct queries and runs the four searches concurrently,
// keeping results in query order. A failed search contributes an empty
// result set. The publisher writes the Markdown report and makes sure it ends
// with a references section that cites every non-empty result set.
package researcher
