// Package sequence implements the sliding-window detection of recurring
// activity patterns. It is a pure computation over an ordered activity
// slice: callers fetch a user's activity history, run Mine, and persist
// the resulting summaries themselves.
//
// Every contiguous window of every configured length is enumerated
// independently, so a long recurring pattern also registers as its
// shorter sub-patterns, and overlapping instances of one pattern each
// count toward its occurrence total. Both behaviors are intentional;
// occurrence counts of nested or overlapping patterns are therefore not
// independent statistics.
package sequence
