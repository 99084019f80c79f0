package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLabeledNameAndDOB(t *testing.T) {
	text := "Patient Name: Jane Doe\nDOB: 01/15/1990\n"

	got := Extract(text)

	require.Contains(t, got, FieldFirstName)
	require.Contains(t, got, FieldLastName)
	require.Contains(t, got, FieldDateOfBirth)

	assert.Equal(t, "Jane", got[FieldFirstName].Value)
	assert.Equal(t, "Doe", got[FieldLastName].Value)
	assert.Equal(t, "01/15/1990", got[FieldDateOfBirth].Value)

	for name, m := range got {
		assert.GreaterOrEqual(t, Score(name, m), float32(0.9), "field %s", name)
	}
}

func TestExtractNameLabelLastCommaFirst(t *testing.T) {
	got := Extract("Name: Doe, Jane\n")

	require.Contains(t, got, FieldFirstName)
	require.Contains(t, got, FieldLastName)
	assert.Equal(t, "Jane", got[FieldFirstName].Value)
	assert.Equal(t, "Doe", got[FieldLastName].Value)
	assert.Equal(t, RuleNameLabel, got[FieldFirstName].Rule)
}

func TestExtractSplitNameLabels(t *testing.T) {
	text := "First Name: jane\nLast Name: doe\nDate of Birth: March 14, 1985\n"

	got := Extract(text)

	require.Contains(t, got, FieldFirstName)
	require.Contains(t, got, FieldLastName)
	assert.Equal(t, "Jane", got[FieldFirstName].Value)
	assert.Equal(t, "Doe", got[FieldLastName].Value)
	assert.Equal(t, RuleSplitNameLabels, got[FieldFirstName].Rule)
	assert.Equal(t, "03/14/1985", got[FieldDateOfBirth].Value)
}

func TestExtractSplitNeedsBothLabels(t *testing.T) {
	got := Extract("First Name: Jane\n")

	// falls through to the generic name label, which matches "Name: Jane"
	require.Contains(t, got, FieldFirstName)
	assert.Equal(t, "Jane", got[FieldFirstName].Value)
	assert.NotContains(t, got, FieldLastName)
}

func TestExtractTwoCapitalizedFallback(t *testing.T) {
	got := Extract("Referral for John Smith regarding imaging.\n")

	require.Contains(t, got, FieldFirstName)
	require.Contains(t, got, FieldLastName)
	assert.Equal(t, RuleTwoCapWords, got[FieldFirstName].Rule)
	assert.InDelta(t, 0.60, Score(FieldFirstName, got[FieldFirstName]), 1e-6)
}

func TestExtractLabelOutranksBareHeuristic(t *testing.T) {
	text := "Referred By Robert Jones\nPatient Name: Jane Doe\n"

	got := Extract(text)

	assert.Equal(t, "Jane", got[FieldFirstName].Value)
	assert.Equal(t, "Doe", got[FieldLastName].Value)
	assert.Equal(t, RulePatientNameLabel, got[FieldFirstName].Rule)
}

func TestExtractDateFormsNormalize(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"numeric label", "DOB: 03/14/1985", "03/14/1985"},
		{"numeric dashes", "DOB: 3-14-1985", "03/14/1985"},
		{"month name", "Date of Birth: March 14, 1985", "03/14/1985"},
		{"month abbrev", "Born Mar 14, 1985", "03/14/1985"},
		{"iso", "Birth Date: 1985-03-14", "03/14/1985"},
		{"two digit year pivots back", "DOB: 3/14/85", "03/14/1985"},
		{"two digit year pivots forward", "DOB: 3/14/20", "03/14/2020"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.text)
			require.Contains(t, got, FieldDateOfBirth)
			assert.Equal(t, tc.want, got[FieldDateOfBirth].Value)
		})
	}
}

func TestExtractSkipsImplausibleDates(t *testing.T) {
	// the first numeric literal is not a calendar date; the second one is
	got := Extract("DOB: 13/45/1990 corrected to 01/15/1990\n")

	require.Contains(t, got, FieldDateOfBirth)
	assert.Equal(t, "01/15/1990", got[FieldDateOfBirth].Value)
}

func TestExtractNoFields(t *testing.T) {
	got := Extract("lorem ipsum dolor sit amet\n")
	assert.Empty(t, got)
}

func TestExtractEmptyText(t *testing.T) {
	assert.Empty(t, Extract(""))
}

func TestExtractDeterministic(t *testing.T) {
	text := "Patient Name: Jane Doe\nDOB: 01/15/1990\nSeen by Mark Green on 02/02/2020\n"

	first := Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Extract(text))
	}
}

func TestScoreBounds(t *testing.T) {
	for _, rule := range []Rule{
		RulePatientNameLabel, RuleNameLabel, RuleSplitNameLabels, RuleTwoCapWords,
		RuleDOBLabelNumeric, RuleDOBLabelMonth, RuleDOBLabelISO,
		RuleDOBBareNumeric, RuleDOBBareMonth, RuleDOBBareISO,
	} {
		base := RuleBase(rule)
		assert.Greater(t, base, float32(0), "rule %s", rule)
		assert.LessOrEqual(t, base, float32(1), "rule %s", rule)
	}
}

func TestScorePenalizesDigitsInNames(t *testing.T) {
	clean := Score(FieldFirstName, Match{Value: "Jane", Rule: RuleNameLabel})
	noisy := Score(FieldFirstName, Match{Value: "J4ne", Rule: RuleNameLabel})

	assert.InDelta(t, clean-0.2, noisy, 1e-6)
	assert.GreaterOrEqual(t, noisy, float32(0))

	// digits never penalize dates
	assert.Equal(t, RuleBase(RuleDOBLabelNumeric),
		Score(FieldDateOfBirth, Match{Value: "01/15/1990", Rule: RuleDOBLabelNumeric}))
}
