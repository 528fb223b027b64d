package service

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Zillorz/svue-api/src/models"
	"github.com/Zillorz/svue-api/src/repository"
)

// GradebookResponse is the cleaned-up gradebook payload.
type GradebookResponse struct {
	Classes []Class `json:"classes"`

	// ReportPeriod is the position of the currently selected reporting
	// period within ReportingPeriods.
	ReportPeriod     int               `json:"report_period"`
	ReportingPeriods []ReportingPeriod `json:"reporting_periods"`
}

type ReportingPeriod struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Class struct {
	Name        string              `json:"name"`
	Teacher     string              `json:"teacher"`
	Category    string              `json:"category"`
	Grade       Score               `json:"grade"`
	LetterGrade string              `json:"letter_grade"`
	Categories  map[string]Category `json:"categories"`
	Assignments []Assignment        `json:"assignments"`
}

type Category struct {
	// Weight is a fraction in [0,1], normalized from the upstream
	// percentage string.
	Weight         float64 `json:"weight"`
	PointsEarned   float64 `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
}

type Assignment struct {
	Name           string  `json:"name"`
	Kind           string  `json:"kind"`
	PointsEarned   Score   `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
	Notes          string  `json:"notes,omitempty"`
}

// Gradebook fetches and transforms the gradebook for an optional report
// period (nil means the upstream default). When caching is enabled a fresh
// hit short-circuits the upstream call entirely, so no cookie mutation can
// happen on that path.
func (s *Service) Gradebook(ctx context.Context, rec *models.SessionRecord, reportPeriod *int) (*GradebookResponse, error) {
	period := -1
	if reportPeriod != nil {
		period = *reportPeriod
	}
	userKey := repository.UserKey(rec.Username)

	if s.Cache != nil {
		payload, err := s.Cache.Get(ctx, userKey, period, s.CacheTTL)
		if err != nil {
			slog.Warn("Gradebook cache read failed", "error", err)
		} else if payload != nil {
			var cached GradebookResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
			slog.Warn("Discarding undecodable gradebook cache entry", "error", err)
		}
	}

	params := ""
	if reportPeriod != nil {
		params = fmt.Sprintf("<ReportPeriod>%d</ReportPeriod>", *reportPeriod)
	}

	inner, err := s.Upstream.Call(ctx, "Gradebook", params, rec)
	if err != nil {
		return nil, err
	}

	var gb gradebookXML
	if err := xml.Unmarshal([]byte(inner), &gb); err != nil {
		return nil, &models.ParsingError{Cause: err}
	}

	resp, err := transformGradebook(gb)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.Cache.Put(ctx, userKey, period, payload); err != nil {
				slog.Warn("Gradebook cache write failed", "error", err)
			}
		}
	}

	return resp, nil
}

var errBadNumber = errors.New("bad float")

func transformGradebook(gb gradebookXML) (*GradebookResponse, error) {
	periods := make([]ReportingPeriod, 0, len(gb.ReportingPeriods.ReportPeriod))
	for _, p := range gb.ReportingPeriods.ReportPeriod {
		periods = append(periods, ReportingPeriod{
			Name:      p.GradePeriod,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		})
	}

	// The response is unusable without knowing which period is selected.
	selected := -1
	for i, p := range periods {
		if p.Name == gb.ReportingPeriod.GradePeriod {
			selected = i
			break
		}
	}
	if selected < 0 {
		return nil, &models.MissingFieldError{Field: "gp_idx"}
	}

	classes := make([]Class, 0, len(gb.Courses.Course))
	for _, course := range gb.Courses.Course {
		class, err := transformClass(course)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}

	return &GradebookResponse{
		Classes:          classes,
		ReportPeriod:     selected,
		ReportingPeriods: periods,
	}, nil
}

func transformClass(course courseXML) (Class, error) {
	// Some non-graded entries legitimately report no mark at all.
	mark := course.Marks.Mark
	if mark == nil {
		return Class{
			Name:        course.Title,
			Teacher:     course.Staff,
			Category:    course.ImageType,
			Grade:       0,
			LetterGrade: "N/A",
			Categories:  map[string]Category{},
			Assignments: []Assignment{},
		}, nil
	}

	grade, err := strconv.ParseFloat(mark.CalculatedScoreRaw, 64)
	if err != nil {
		return Class{}, fmt.Errorf("%w: %v", errBadNumber, err)
	}

	letter := mark.CalculatedScoreString
	if strings.ContainsFunc(letter, unicode.IsNumber) {
		// Upstream sent a number where the letter belongs; recompute it.
		letter = letterFor(grade)
	}

	categories := map[string]Category{}
	for _, calc := range mark.GradeCalculationSummary.AssignmentGradeCalc {
		// TOTAL is a derived aggregate, not a real weighted category.
		if calc.Type == "TOTAL" {
			continue
		}

		weight, err := parseNumber(strings.Trim(calc.Weight, "%"))
		if err != nil {
			return Class{}, fmt.Errorf("%w: %v", errBadNumber, err)
		}
		earned, err := parseNumber(calc.Points)
		if err != nil {
			return Class{}, fmt.Errorf("%w: %v", errBadNumber, err)
		}
		possible, err := parseNumber(calc.PointsPossible)
		if err != nil {
			return Class{}, fmt.Errorf("%w: %v", errBadNumber, err)
		}

		categories[calc.Type] = Category{
			Weight:         weight / 100,
			PointsEarned:   earned,
			PointsPossible: possible,
		}
	}

	assignments := make([]Assignment, 0, len(mark.Assignments.Assignment))
	for _, assign := range mark.Assignments.Assignment {
		earned := NoScore()
		if assign.ScoreCalValue != nil {
			if v, err := parseNumber(*assign.ScoreCalValue); err == nil {
				earned = Score(v)
			}
		}

		possible, ok := pointsPossible(assign)
		if !ok {
			// An assignment with unknown maximum score cannot be
			// displayed meaningfully.
			continue
		}

		assignments = append(assignments, Assignment{
			Name:           unescapeEntities(assign.Measure),
			Kind:           assign.Type,
			PointsEarned:   earned,
			PointsPossible: possible,
			Notes:          assign.Notes,
		})
	}

	return Class{
		Name:        course.Title,
		Teacher:     course.Staff,
		Category:    course.ImageType,
		Grade:       Score(grade),
		LetterGrade: letter,
		Categories:  categories,
		Assignments: assignments,
	}, nil
}

func letterFor(grade float64) string {
	switch {
	case grade >= 89.5:
		return "A"
	case grade >= 79.5:
		return "B"
	case grade >= 69.5:
		return "C"
	case grade >= 59.5:
		return "D"
	case !math.IsNaN(grade) && !math.IsInf(grade, 0):
		return "E"
	default:
		return "N/A"
	}
}

// parseNumber parses upstream numerics, which arrive with thousands
// separators more often than not.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// pointsPossible resolves an assignment's maximum score through an ordered
// chain of parse attempts, short-circuiting on the first success. Each
// step is independent so the policy stays auditable.
var pointsPossibleAttempts = []func(assignmentXML) (float64, bool){
	// ScoreMaxValue when present.
	func(a assignmentXML) (float64, bool) {
		if a.ScoreMaxValue == nil {
			return 0, false
		}
		v, err := parseNumber(*a.ScoreMaxValue)
		return v, err == nil
	},
	// The denominator of a "45 / 50" style Points field.
	func(a assignmentXML) (float64, bool) {
		_, after, found := strings.Cut(a.Points, "/")
		if !found {
			return 0, false
		}
		v, err := parseNumber(strings.TrimSpace(after))
		return v, err == nil
	},
	// A "50 Points Possible" style Points field.
	func(a assignmentXML) (float64, bool) {
		if strings.Contains(a.Points, "/") {
			return 0, false
		}
		stripped := strings.ReplaceAll(a.Points, "Points Possible", "")
		v, err := parseNumber(strings.TrimSpace(stripped))
		return v, err == nil
	},
}

func pointsPossible(a assignmentXML) (float64, bool) {
	for _, attempt := range pointsPossibleAttempts {
		if v, ok := attempt(a); ok {
			return v, true
		}
	}
	return 0, false
}

// unescapeEntities undoes one extra level of escaping; upstream
// double-escapes free text inside attributes.
func unescapeEntities(s string) string {
	s = strings.ReplaceAll(s, "&apos;", "'")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return s
}

// Raw XML shapes; only the fields the transform reads.

type gradebookXML struct {
	XMLName          xml.Name `xml:"Gradebook"`
	ReportingPeriods struct {
		ReportPeriod []struct {
			GradePeriod string `xml:"GradePeriod,attr"`
			StartDate   string `xml:"StartDate,attr"`
			EndDate     string `xml:"EndDate,attr"`
		} `xml:"ReportPeriod"`
	} `xml:"ReportingPeriods"`
	ReportingPeriod struct {
		GradePeriod string `xml:"GradePeriod,attr"`
	} `xml:"ReportingPeriod"`
	Courses struct {
		Course []courseXML `xml:"Course"`
	} `xml:"Courses"`
}

type courseXML struct {
	Title     string `xml:"Title,attr"`
	Staff     string `xml:"Staff,attr"`
	ImageType string `xml:"ImageType,attr"`
	Marks     struct {
		Mark *markXML `xml:"Mark"`
	} `xml:"Marks"`
}

type markXML struct {
	CalculatedScoreString   string `xml:"CalculatedScoreString,attr"`
	CalculatedScoreRaw      string `xml:"CalculatedScoreRaw,attr"`
	GradeCalculationSummary struct {
		AssignmentGradeCalc []struct {
			Type           string `xml:"Type,attr"`
			Weight         string `xml:"Weight,attr"`
			Points         string `xml:"Points,attr"`
			PointsPossible string `xml:"PointsPossible,attr"`
		} `xml:"AssignmentGradeCalc"`
	} `xml:"GradeCalculationSummary"`
	Assignments struct {
		Assignment []assignmentXML `xml:"Assignment"`
	} `xml:"Assignments"`
}

type assignmentXML struct {
	Measure       string  `xml:"Measure,attr"`
	Type          string  `xml:"Type,attr"`
	ScoreCalValue *string `xml:"ScoreCalValue,attr"`
	ScoreMaxValue *string `xml:"ScoreMaxValue,attr"`
	Points        string  `xml:"Points,attr"`
	Notes         string  `xml:"Notes,attr"`
}
