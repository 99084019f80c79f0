// Package fields locates patient identity fields in acquired document text.
// Matching is pure and deterministic: the same text always produces the same
// matches, and rule order decides precedence (earlier rules are higher
// precision).
package fields

// FieldName identifies one extractable patient field.
type FieldName string

const (
	FieldFirstName   FieldName = "first_name"
	FieldLastName    FieldName = "last_name"
	FieldDateOfBirth FieldName = "date_of_birth"
)

// Rule tags the pattern that produced a match. Each rule carries a fixed base
// confidence (see rules.go); the scorer only ever reduces it.
type Rule string

const (
	RulePatientNameLabel Rule = "patient_name_label" // "Patient Name: Jane Doe"
	RuleNameLabel        Rule = "name_label"         // "Name: Jane Doe"
	RuleSplitNameLabels  Rule = "split_name_labels"  // "First Name: ... Last Name: ..."
	RuleTwoCapWords      Rule = "two_capitalized"    // bare "Jane Doe" heuristic

	RuleDOBLabelNumeric Rule = "dob_label_numeric" // "DOB: 01/15/1990"
	RuleDOBLabelMonth   Rule = "dob_label_month"   // "Date of Birth: March 14, 1985"
	RuleDOBLabelISO     Rule = "dob_label_iso"     // "Born: 1985-03-14"
	RuleDOBBareNumeric  Rule = "dob_bare_numeric"
	RuleDOBBareMonth    Rule = "dob_bare_month"
	RuleDOBBareISO      Rule = "dob_bare_iso"
)

// Match is a field value paired with the rule that found it and the span of
// the raw match in the input text.
type Match struct {
	Value string
	Rule  Rule
	Start int
	End   int
}
