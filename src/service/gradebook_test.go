package service

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"math"
	"testing"

	"github.com/Zillorz/svue-api/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGradebook(t *testing.T, raw string) gradebookXML {
	t.Helper()
	var gb gradebookXML
	require.NoError(t, xml.Unmarshal([]byte(raw), &gb))
	return gb
}

func TestLetterThresholds(t *testing.T) {
	cases := []struct {
		grade  float64
		letter string
	}{
		{100, "A"},
		{89.5, "A"},
		{89.4999, "B"},
		{79.5, "B"},
		{69.5, "C"},
		{59.5, "D"},
		{59.4999, "E"},
		{0, "E"},
		{math.NaN(), "N/A"},
		{math.Inf(1), "N/A"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.letter, letterFor(tc.grade), "grade %v", tc.grade)
	}
}

func TestLetterRecomputedOnlyWhenNumeric(t *testing.T) {
	gb := parseGradebook(t, `<Gradebook>
		<ReportingPeriods>
			<ReportPeriod GradePeriod="Q1" StartDate="08/25/2025" EndDate="11/06/2025" />
		</ReportingPeriods>
		<ReportingPeriod GradePeriod="Q1" />
		<Courses>
			<Course Title="Algebra" Staff="Ms. Frizzle" ImageType="MA">
				<Marks><Mark CalculatedScoreString="92.3" CalculatedScoreRaw="92.3" /></Marks>
			</Course>
			<Course Title="Band" Staff="Mr. Holland" ImageType="MU">
				<Marks><Mark CalculatedScoreString="P" CalculatedScoreRaw="100" /></Marks>
			</Course>
		</Courses>
	</Gradebook>`)

	resp, err := transformGradebook(gb)
	require.NoError(t, err)
	require.Len(t, resp.Classes, 2)

	// A numeric "letter" gets replaced by the threshold letter.
	assert.Equal(t, "A", resp.Classes[0].LetterGrade)
	// Non-numeric strings like pass/fail marks survive untouched.
	assert.Equal(t, "P", resp.Classes[1].LetterGrade)
}

func TestSelectedPeriodIndex(t *testing.T) {
	gb := parseGradebook(t, `<Gradebook>
		<ReportingPeriods>
			<ReportPeriod GradePeriod="Q1" StartDate="08/25/2025" EndDate="11/06/2025" />
			<ReportPeriod GradePeriod="Q2" StartDate="11/07/2025" EndDate="01/23/2026" />
		</ReportingPeriods>
		<ReportingPeriod GradePeriod="Q2" />
		<Courses></Courses>
	</Gradebook>`)

	resp, err := transformGradebook(gb)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ReportPeriod)
	require.Len(t, resp.ReportingPeriods, 2)
	assert.Equal(t, "Q2", resp.ReportingPeriods[1].Name)
	assert.Equal(t, "11/07/2025", resp.ReportingPeriods[1].StartDate)
}

func TestSelectedPeriodMissingIsHardError(t *testing.T) {
	gb := parseGradebook(t, `<Gradebook>
		<ReportingPeriods>
			<ReportPeriod GradePeriod="Q1" StartDate="" EndDate="" />
		</ReportingPeriods>
		<ReportingPeriod GradePeriod="Semester" />
		<Courses></Courses>
	</Gradebook>`)

	_, err := transformGradebook(gb)
	require.Error(t, err)

	var missing *models.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "gp_idx", missing.Field)
}

func TestMarklessCourseGetsPlaceholder(t *testing.T) {
	class, err := transformClass(parseCourse(t, `<Course Title="Lunch" Staff="" ImageType="OT">
		<Marks></Marks>
	</Course>`))
	require.NoError(t, err)

	assert.Equal(t, "Lunch", class.Name)
	assert.Equal(t, Score(0), class.Grade)
	assert.Equal(t, "N/A", class.LetterGrade)
	assert.NotNil(t, class.Categories)
	assert.Empty(t, class.Categories)
	assert.NotNil(t, class.Assignments)
	assert.Empty(t, class.Assignments)
}

func parseCourse(t *testing.T, raw string) courseXML {
	t.Helper()
	var c courseXML
	require.NoError(t, xml.Unmarshal([]byte(raw), &c))
	return c
}

func TestCategoryTransform(t *testing.T) {
	class, err := transformClass(parseCourse(t, `<Course Title="History" Staff="Mr. Keating" ImageType="SS">
		<Marks><Mark CalculatedScoreString="B" CalculatedScoreRaw="84.2">
			<GradeCalculationSummary>
				<AssignmentGradeCalc Type="Homework" Weight="25%" Points="1,234.5" PointsPossible="1,400" />
				<AssignmentGradeCalc Type="Exams" Weight="75%" Points="200" PointsPossible="300" />
				<AssignmentGradeCalc Type="TOTAL" Weight="100%" Points="1,434.5" PointsPossible="1,700" />
			</GradeCalculationSummary>
		</Mark></Marks>
	</Course>`))
	require.NoError(t, err)

	// TOTAL is dropped; only real categories remain.
	require.Len(t, class.Categories, 2)

	hw := class.Categories["Homework"]
	assert.InDelta(t, 0.25, hw.Weight, 1e-9)
	assert.InDelta(t, 1234.5, hw.PointsEarned, 1e-9)
	assert.InDelta(t, 1400, hw.PointsPossible, 1e-9)

	assert.InDelta(t, 0.75, class.Categories["Exams"].Weight, 1e-9)
}

func TestUnparsableCategoryIsHardError(t *testing.T) {
	_, err := transformClass(parseCourse(t, `<Course Title="History" Staff="" ImageType="SS">
		<Marks><Mark CalculatedScoreString="B" CalculatedScoreRaw="84.2">
			<GradeCalculationSummary>
				<AssignmentGradeCalc Type="Homework" Weight="n/a" Points="10" PointsPossible="20" />
			</GradeCalculationSummary>
		</Mark></Marks>
	</Course>`))
	assert.ErrorIs(t, err, errBadNumber)
}

func TestUnparsableGradeIsHardError(t *testing.T) {
	_, err := transformClass(parseCourse(t, `<Course Title="History" Staff="" ImageType="SS">
		<Marks><Mark CalculatedScoreString="B" CalculatedScoreRaw="" /></Marks>
	</Course>`))
	assert.ErrorIs(t, err, errBadNumber)
}

func TestAssignmentTransform(t *testing.T) {
	class, err := transformClass(parseCourse(t, `<Course Title="English" Staff="Mr. Keating" ImageType="EN">
		<Marks><Mark CalculatedScoreString="A" CalculatedScoreRaw="95">
			<Assignments>
				<Assignment Measure="Essay" Type="Major" ScoreCalValue="47.5" ScoreMaxValue="50" Points="47.5 / 50" Notes="late" />
				<Assignment Measure="Quiz &amp;amp; Review" Type="Minor" ScoreCalValue="9" Points="9 / 10" />
				<Assignment Measure="Ungraded" Type="Minor" Points="25 Points Possible" />
			</Assignments>
		</Mark></Marks>
	</Course>`))
	require.NoError(t, err)
	require.Len(t, class.Assignments, 3)

	essay := class.Assignments[0]
	assert.Equal(t, "Essay", essay.Name)
	assert.Equal(t, "Major", essay.Kind)
	assert.Equal(t, Score(47.5), essay.PointsEarned)
	assert.Equal(t, 50.0, essay.PointsPossible)
	assert.Equal(t, "late", essay.Notes)

	// Double-escaped entity text is unescaped one extra level.
	assert.Equal(t, "Quiz & Review", class.Assignments[1].Name)

	// Missing ScoreCalValue means not-yet-graded, not zero.
	ungraded := class.Assignments[2]
	assert.False(t, ungraded.PointsEarned.Known())
	assert.Equal(t, 25.0, ungraded.PointsPossible)
}

func TestPointsPossibleFallbackChain(t *testing.T) {
	str := func(s string) *string { return &s }

	cases := []struct {
		name   string
		assign assignmentXML
		want   float64
		ok     bool
	}{
		{"max value wins", assignmentXML{ScoreMaxValue: str("50"), Points: "1 / 999"}, 50, true},
		{"slash denominator", assignmentXML{Points: "45 / 50"}, 50, true},
		{"slash with commas", assignmentXML{Points: "900 / 1,000"}, 1000, true},
		{"phrase form", assignmentXML{Points: "50 Points Possible"}, 50, true},
		{"unparsable max falls through", assignmentXML{ScoreMaxValue: str("n/a"), Points: "45 / 50"}, 50, true},
		// The phrase parse never runs once a slash is present, even when the
		// denominator is garbage.
		{"bad denominator with slash", assignmentXML{Points: "45 / fifty Points Possible"}, 0, false},
		{"nothing usable", assignmentXML{Points: "Not Graded"}, 0, false},
		{"empty", assignmentXML{}, 0, false},
	}
	for _, tc := range cases {
		got, ok := pointsPossible(tc.assign)
		assert.Equal(t, tc.ok, ok, tc.name)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, tc.name)
		}
	}
}

func TestAssignmentWithoutMaximumIsDropped(t *testing.T) {
	class, err := transformClass(parseCourse(t, `<Course Title="Art" Staff="" ImageType="AR">
		<Marks><Mark CalculatedScoreString="A" CalculatedScoreRaw="95">
			<Assignments>
				<Assignment Measure="Sketch" Type="Minor" Points="Not Graded" />
				<Assignment Measure="Portrait" Type="Major" ScoreCalValue="10" Points="10 / 10" />
			</Assignments>
		</Mark></Marks>
	</Course>`))
	require.NoError(t, err)

	require.Len(t, class.Assignments, 1)
	assert.Equal(t, "Portrait", class.Assignments[0].Name)
}

func TestUnescapeEntitiesIsSequential(t *testing.T) {
	assert.Equal(t, "Tom's \"Essay\"", unescapeEntities("Tom&apos;s &quot;Essay&quot;"))
	// Stacked escapes collapse fully because the replaces run in order.
	assert.Equal(t, "<b>", unescapeEntities("&amp;lt;b&amp;gt;"))
}

func TestScoreJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Assignment{Name: "Essay", PointsEarned: NoScore(), PointsPossible: 50})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"points_earned":null`)

	var decoded Assignment
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.PointsEarned.Known())

	data, err = json.Marshal(Assignment{PointsEarned: Score(47.5), PointsPossible: 50})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"points_earned":47.5`)
}
