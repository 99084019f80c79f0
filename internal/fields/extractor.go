package fields

import (
	"strings"
)

// Extract applies the ordered matchers to text and returns the fields they
// found. A field with no successful matcher is absent from the map — never
// present with an empty value.
func Extract(text string) map[FieldName]Match {
	out := make(map[FieldName]Match)
	extractNames(text, out)
	extractDateOfBirth(text, out)
	return out
}

func extractNames(text string, out map[FieldName]Match) {
	for _, r := range nameRules {
		// The split-labels rule outranks the generic name label, which would
		// otherwise match the "Name:" inside "First Name:".
		if r.Rule == RuleNameLabel && extractSplitNames(text, out) {
			return
		}

		loc := r.Re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}

		if r.Rule == RuleTwoCapWords {
			// groups are the two words themselves
			first := text[loc[2]:loc[3]]
			last := text[loc[4]:loc[5]]
			out[FieldFirstName] = Match{Value: titleCase(first), Rule: r.Rule, Start: loc[2], End: loc[3]}
			out[FieldLastName] = Match{Value: titleCase(last), Rule: r.Rule, Start: loc[4], End: loc[5]}
			return
		}

		raw := text[loc[2]:loc[3]]
		first, last, ok := splitName(raw)
		if !ok {
			continue
		}
		out[FieldFirstName] = Match{Value: first, Rule: r.Rule, Start: loc[2], End: loc[3]}
		if last != "" {
			out[FieldLastName] = Match{Value: last, Rule: r.Rule, Start: loc[2], End: loc[3]}
		}
		return
	}
}

// extractSplitNames handles documents that label the parts separately
// ("First Name: Jane" ... "Last Name: Doe"). Both labels must match.
func extractSplitNames(text string, out map[FieldName]Match) bool {
	fl := reFirstNameLabel.FindStringSubmatchIndex(text)
	ll := reLastNameLabel.FindStringSubmatchIndex(text)
	if fl == nil || ll == nil {
		return false
	}
	out[FieldFirstName] = Match{Value: titleCase(text[fl[2]:fl[3]]), Rule: RuleSplitNameLabels, Start: fl[2], End: fl[3]}
	out[FieldLastName] = Match{Value: titleCase(text[ll[2]:ll[3]]), Rule: RuleSplitNameLabels, Start: ll[2], End: ll[3]}
	return true
}

// splitName separates a combined name capture into first/last. "Last, First"
// and "First Last" both resolve to the two component fields; a single token
// becomes the first name only.
func splitName(raw string) (first, last string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}

	if before, after, found := strings.Cut(raw, ","); found {
		last = titleCase(strings.TrimSpace(before))
		first = titleCase(firstToken(after))
		if first == "" || last == "" {
			return "", "", false
		}
		return first, last, true
	}

	parts := strings.Fields(raw)
	switch len(parts) {
	case 0:
		return "", "", false
	case 1:
		return titleCase(parts[0]), "", true
	default:
		rest := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			rest = append(rest, titleCase(p))
		}
		return titleCase(parts[0]), strings.Join(rest, " "), true
	}
}

func extractDateOfBirth(text string, out map[FieldName]Match) {
	for _, r := range dobRules {
		for _, loc := range r.Re.FindAllStringSubmatchIndex(text, -1) {
			groups := make([]string, 0, 3)
			for g := 1; g <= 3; g++ {
				groups = append(groups, text[loc[2*g]:loc[2*g+1]])
			}
			value, ok := normalizeDate(r.Kind, groups)
			if !ok {
				// implausible calendar date; try the next occurrence
				continue
			}
			out[FieldDateOfBirth] = Match{Value: value, Rule: r.Rule, Start: loc[0], End: loc[1]}
			return
		}
	}
}

func firstToken(s string) string {
	fs := strings.Fields(s)
	if len(fs) == 0 {
		return ""
	}
	return fs[0]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
