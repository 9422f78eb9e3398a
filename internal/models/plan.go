package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekdays is the canonical day ordering used by every schedule routine.
// A WeeklySchedule has exactly these seven keys, always.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// IsWeekday reports whether name is one of the seven canonical day names.
func IsWeekday(name string) bool {
	for _, d := range Weekdays {
		if d == name {
			return true
		}
	}
	return false
}

// Exercise is a single exercise slot within a session.
type Exercise struct {
	Exercise       string `json:"exercise"`
	Sets           int    `json:"sets"`
	RepsOrDuration string `json:"repsOrDuration"`
	Rest           string `json:"rest,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// Session is one workout day's content.
type Session struct {
	SessionName string     `json:"sessionName"`
	Exercises   []Exercise `json:"exercises"`
	Notes       []string   `json:"notes,omitempty"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{SessionName: s.SessionName}
	out.Exercises = append([]Exercise(nil), s.Exercises...)
	out.Notes = append([]string(nil), s.Notes...)
	return out
}

// DaySchedule is either a rest day or a training session. A nil Session
// means Rest. On the wire it is the literal string "Rest" or a session object.
type DaySchedule struct {
	Session *Session
}

// Rest reports whether the day is a rest day.
func (d DaySchedule) Rest() bool { return d.Session == nil }

// RestDay is the canonical rest-day value.
var RestDay = DaySchedule{}

// WorkoutDay wraps a session as a scheduled day.
func WorkoutDay(s *Session) DaySchedule { return DaySchedule{Session: s} }

func (d DaySchedule) MarshalJSON() ([]byte, error) {
	if d.Session == nil {
		return json.Marshal("Rest")
	}
	return json.Marshal(d.Session)
}

func (d *DaySchedule) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "Rest" {
			return fmt.Errorf("day schedule string must be %q, got %q", "Rest", s)
		}
		d.Session = nil
		return nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("parsing day schedule: %w", err)
	}
	d.Session = &sess
	return nil
}

// WeeklySchedule maps each canonical day name to its schedule.
type WeeklySchedule map[string]DaySchedule

// NewWeeklySchedule returns an all-rest schedule with all seven day keys.
func NewWeeklySchedule() WeeklySchedule {
	ws := make(WeeklySchedule, len(Weekdays))
	for _, d := range Weekdays {
		ws[d] = RestDay
	}
	return ws
}

// Normalize fills in any missing canonical day as Rest and drops unknown keys.
func (ws WeeklySchedule) Normalize() {
	for k := range ws {
		if !IsWeekday(k) {
			delete(ws, k)
		}
	}
	for _, d := range Weekdays {
		if _, ok := ws[d]; !ok {
			ws[d] = RestDay
		}
	}
}

// Clone returns a deep copy of the schedule.
func (ws WeeklySchedule) Clone() WeeklySchedule {
	out := make(WeeklySchedule, len(ws))
	for day, d := range ws {
		out[day] = DaySchedule{Session: d.Session.Clone()}
	}
	return out
}

// WorkoutDays returns the non-rest day names in canonical order.
func (ws WeeklySchedule) WorkoutDays() []string {
	var days []string
	for _, d := range Weekdays {
		if !ws[d].Rest() {
			days = append(days, d)
		}
	}
	return days
}

// RestDays returns the rest day names in canonical order.
func (ws WeeklySchedule) RestDays() []string {
	var days []string
	for _, d := range Weekdays {
		if ws[d].Rest() {
			days = append(days, d)
		}
	}
	return days
}

// ExerciseRef locates one exercise within a schedule.
type ExerciseRef struct {
	Day   string
	Index int
}

// FindExercise returns the locations of every exercise whose name matches,
// case-insensitively, in canonical day order.
func (ws WeeklySchedule) FindExercise(name string) []ExerciseRef {
	var refs []ExerciseRef
	for _, day := range Weekdays {
		sess := ws[day].Session
		if sess == nil {
			continue
		}
		for i, ex := range sess.Exercises {
			if strings.EqualFold(ex.Exercise, name) {
				refs = append(refs, ExerciseRef{Day: day, Index: i})
			}
		}
	}
	return refs
}

// HasExercise reports whether any exercise with the given name exists.
func (ws WeeklySchedule) HasExercise(name string) bool {
	return len(ws.FindExercise(name)) > 0
}

// AdjustmentRecord is one entry in a plan's adjustment history.
type AdjustmentRecord struct {
	ID        uuid.UUID `json:"id"`
	Feedback  string    `json:"feedback"`
	Source    string    `json:"source"`
	Applied   []string  `json:"applied,omitempty"`
	Skipped   []string  `json:"skipped,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkoutPlan is a user's weekly training plan.
type WorkoutPlan struct {
	PlanID            uuid.UUID           `json:"planId"`
	PlanName          string              `json:"planName"`
	WeeklySchedule    WeeklySchedule      `json:"weeklySchedule"`
	ArchivedSessions  map[string]*Session `json:"archivedSessions,omitempty"`
	LastAdjusted      *time.Time          `json:"lastAdjusted,omitempty"`
	AdjustmentHistory []AdjustmentRecord  `json:"adjustmentHistory,omitempty"`
	AppliedChanges    []string            `json:"appliedChanges,omitempty"`
}

// Clone returns a deep copy of the plan. Mutation routines operate on clones
// so the caller's plan is never changed in place.
func (p *WorkoutPlan) Clone() *WorkoutPlan {
	if p == nil {
		return nil
	}
	out := &WorkoutPlan{
		PlanID:         p.PlanID,
		PlanName:       p.PlanName,
		WeeklySchedule: p.WeeklySchedule.Clone(),
	}
	if p.ArchivedSessions != nil {
		out.ArchivedSessions = make(map[string]*Session, len(p.ArchivedSessions))
		for day, sess := range p.ArchivedSessions {
			out.ArchivedSessions[day] = sess.Clone()
		}
	}
	if p.LastAdjusted != nil {
		t := *p.LastAdjusted
		out.LastAdjusted = &t
	}
	out.AdjustmentHistory = append([]AdjustmentRecord(nil), p.AdjustmentHistory...)
	out.AppliedChanges = append([]string(nil), p.AppliedChanges...)
	return out
}
