package rrule

// Diagnostic is a non-fatal remark about a valid rule.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	DiagOpenEnded     = "open_ended"
	DiagShortMonths   = "short_months"
	DiagUntilAndCount = "until_and_count"
)

// Lint returns diagnostics for rules that are valid but likely surprising.
func Lint(r RecurrenceRule) []Diagnostic {
	var out []Diagnostic
	if r.IsZero() {
		return out
	}

	if r.OpenEnded() {
		out = append(out, Diagnostic{
			Code:    DiagOpenEnded,
			Message: "rule has neither UNTIL nor COUNT; expansion stops at the generation cap",
		})
	}
	if r.byMonthDay > 28 || r.byMonthDay < -28 {
		out = append(out, Diagnostic{
			Code:    DiagShortMonths,
			Message: "months without this day are skipped",
		})
	}
	if r.until.IsPresent() && r.count > 0 {
		out = append(out, Diagnostic{
			Code:    DiagUntilAndCount,
			Message: "both UNTIL and COUNT are set; whichever is reached first ends the series",
		})
	}
	return out
}
