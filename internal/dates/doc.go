// Package dates turns relative date phrases into concrete calendar ranges.
//
// Recognized phrases, matched case-insensitively as substrings with the
// first match winning:
//
//	"last month"   previous calendar month
//	"this month"   anchor's calendar month
//	"last week"    Monday..Sunday of the week before the anchor's week
//	"this week"    Monday..Sunday of the anchor's week
//	"past 7 days"  anchor-6 .. anchor
//	"q<N> <YYYY>"  calendar quarter N (1-4) of year YYYY
//
// Anything else resolves to the anchor's calendar month. Resolve never fails
// for a value that IsDateExpression accepts.
//
// All functions are pure: the anchor is an explicit argument.
package dates
