package fields

import "strings"

// digitPenalty is subtracted when a name value carries digits — usually an
// OCR artifact bleeding into the capture.
const digitPenalty = 0.2

// RuleBase returns the fixed base confidence of a rule.
func RuleBase(rule Rule) float32 {
	if rule == RuleSplitNameLabels {
		return splitNameBase
	}
	for _, r := range nameRules {
		if r.Rule == rule {
			return r.Base
		}
	}
	for _, r := range dobRules {
		if r.Rule == rule {
			return r.Base
		}
	}
	return 0
}

// Score returns the confidence for a match: the base confidence of the rule
// that produced it, reduced (never increased) when the value spans unexpected
// characters. Deterministic given (field, match).
func Score(field FieldName, m Match) float32 {
	score := RuleBase(m.Rule)

	if field == FieldFirstName || field == FieldLastName {
		if strings.ContainsAny(m.Value, "0123456789") {
			score -= digitPenalty
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
