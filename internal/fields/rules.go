package fields

import "regexp"

// Name matchers. The value class deliberately excludes newlines so a label
// match never swallows the following line ("Patient Name: Jane Doe\nDOB: ...").
const nameChars = `[A-Za-z][A-Za-z.'\-]*`

type nameRule struct {
	Rule Rule
	Re   *regexp.Regexp
	Base float32
}

// nameRules is ordered by precision; the first matching rule wins.
var nameRules = []nameRule{
	{
		Rule: RulePatientNameLabel,
		Re:   regexp.MustCompile(`(?i)patient\s*name\s*[:\s][ \t]*(` + nameChars + `(?:,?[ \t]+` + nameChars + `)*)`),
		Base: 0.95,
	},
	{
		Rule: RuleNameLabel,
		Re:   regexp.MustCompile(`(?i)\bname\s*:[ \t]*(` + nameChars + `(?:,?[ \t]+` + nameChars + `)*)`),
		Base: 0.90,
	},
	{
		Rule: RuleTwoCapWords,
		Re:   regexp.MustCompile(`\b([A-Z][a-z]+)[ \t]+([A-Z][a-z]+)\b`),
		Base: 0.60,
	},
}

// splitNameRes match documents that label the name parts separately.
// Both labels must hit for the rule to produce a match.
var (
	reFirstNameLabel = regexp.MustCompile(`(?i)first\s*name\s*[:\s][ \t]*(` + nameChars + `)`)
	reLastNameLabel  = regexp.MustCompile(`(?i)last\s*name\s*[:\s][ \t]*(` + nameChars + `)`)
)

const splitNameBase = 0.92

// Date-of-birth matchers. Labeled forms outrank bare literals.
const (
	dobLabel    = `(?i)(?:date\s*of\s*birth|dob|birth\s*date|born)\s*[:\s][ \t]*`
	numericDate = `(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})`
	monthDate   = `(?i)(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?[ \t]+(\d{1,2}),?[ \t]+(\d{4})`
	isoDate     = `(\d{4})-(\d{2})-(\d{2})`
)

type dobRule struct {
	Rule Rule
	Re   *regexp.Regexp
	Kind dateKind
	Base float32
}

var dobRules = []dobRule{
	{RuleDOBLabelNumeric, regexp.MustCompile(dobLabel + numericDate), dateNumeric, 0.95},
	{RuleDOBLabelMonth, regexp.MustCompile(dobLabel + monthDate), dateMonthName, 0.93},
	{RuleDOBLabelISO, regexp.MustCompile(dobLabel + isoDate), dateISO, 0.93},
	{RuleDOBBareNumeric, regexp.MustCompile(numericDate), dateNumeric, 0.75},
	{RuleDOBBareMonth, regexp.MustCompile(monthDate), dateMonthName, 0.72},
	{RuleDOBBareISO, regexp.MustCompile(isoDate), dateISO, 0.70},
}
