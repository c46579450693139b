package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/text/cases"

	"github.com/roach88/asksql/internal/ir"
)

// Rule identifies which phrase produced a range.
type Rule string

const (
	RuleLastMonth Rule = "last_month"
	RuleThisMonth Rule = "this_month"
	RuleLastWeek  Rule = "last_week"
	RuleThisWeek  Rule = "this_week"
	RulePast7Days Rule = "past_7_days"
	RuleQuarter   Rule = "quarter"
	RuleFallback  Rule = "fallback"
)

// keywordRules lists the substring rules in priority order.
var keywordRules = []struct {
	keyword string
	rule    Rule
}{
	{"last month", RuleLastMonth},
	{"this month", RuleThisMonth},
	{"last week", RuleLastWeek},
	{"this week", RuleThisWeek},
	{"past 7 days", RulePast7Days},
}

// quarterPattern matches "q<N> <YYYY>" anywhere in the folded phrase.
var quarterPattern = regexp.MustCompile(`\bq([1-4])\s+(\d{4})\b`)

// quarterToken matches a bare quarter token for classification.
var quarterToken = regexp.MustCompile(`\bq[1-4]\b`)

// fold lowercases s for caseless matching. A Caser is stateful, so one is
// created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Resolve returns the inclusive range a phrase denotes relative to anchor.
func Resolve(phrase string, anchor civil.Date) ir.DateRange {
	r, _ := ResolveRule(phrase, anchor)
	return r
}

// ResolveRule is Resolve that also reports which rule matched.
func ResolveRule(phrase string, anchor civil.Date) (ir.DateRange, Rule) {
	p := fold(phrase)

	for _, kr := range keywordRules {
		if !strings.Contains(p, kr.keyword) {
			continue
		}
		switch kr.rule {
		case RuleLastMonth:
			first := civil.DateOf(time.Date(anchor.Year, anchor.Month-1, 1, 0, 0, 0, 0, time.UTC))
			return monthRange(first.Year, first.Month), kr.rule
		case RuleThisMonth:
			return monthRange(anchor.Year, anchor.Month), kr.rule
		case RuleLastWeek:
			start := mondayOf(anchor).AddDays(-7)
			return ir.DateRange{Start: start, End: start.AddDays(6)}, kr.rule
		case RuleThisWeek:
			start := mondayOf(anchor)
			return ir.DateRange{Start: start, End: start.AddDays(6)}, kr.rule
		case RulePast7Days:
			return ir.DateRange{Start: anchor.AddDays(-6), End: anchor}, kr.rule
		}
	}

	if m := quarterPattern.FindStringSubmatch(p); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return QuarterRange(q, year), RuleQuarter
	}

	return monthRange(anchor.Year, anchor.Month), RuleFallback
}

// IsDateExpression reports whether value should be resolved as a relative
// phrase. Literal YYYY-MM-DD values are never date expressions.
func IsDateExpression(value string) bool {
	if ir.IsISODate(strings.TrimSpace(value)) {
		return false
	}
	p := fold(value)
	for _, kr := range keywordRules {
		if strings.Contains(p, kr.keyword) {
			return true
		}
	}
	return quarterToken.MatchString(p)
}

// QuarterRange returns the range of quarter q (1-4) in year.
func QuarterRange(q, year int) ir.DateRange {
	startMonth := time.Month((q-1)*3 + 1)
	start := civil.Date{Year: year, Month: startMonth, Day: 1}
	end := lastDayOf(year, startMonth+2)
	return ir.DateRange{Start: start, End: end}
}

func monthRange(year int, month time.Month) ir.DateRange {
	return ir.DateRange{
		Start: civil.Date{Year: year, Month: month, Day: 1},
		End:   lastDayOf(year, month),
	}
}

// lastDayOf relies on time.Date normalizing day 0 to the previous month's end.
func lastDayOf(year int, month time.Month) civil.Date {
	return civil.DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
}

// mondayOf returns the Monday of d's ISO week.
func mondayOf(d civil.Date) civil.Date {
	offset := (int(d.In(time.UTC).Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
