package students

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NumSubjects is the size of the fixed course catalog.
const NumSubjects = 10

// Grade bounds for a finished subject.
const (
	MinGrade = 0.0
	MaxGrade = 100.0
)

// NotStudied marks a catalog slot the student has not completed.
const NotStudied = -1.0

// Subjects is the fixed course catalog. Enrollment indices are 1-based
// positions in this list.
var Subjects = [NumSubjects]string{
	"Programming Principles",
	"Object Oriented Programming",
	"Data Structures and Algorithms",
	"Algorithms Analysis and Design",
	"Databases",
	"System Analysis and Design",
	"Software Engineering",
	"Machine Learning",
	"Research",
	"AI Application",
}

// Student is one enrolled learner. Grades holds one slot per catalog
// subject, NotStudied until the subject is finished. Finished, Total and
// GPA are maintained by Record and must not be edited directly.
type Student struct {
	ID       uuid.UUID            `json:"id"`
	Name     string               `json:"name"`
	Age      int                  `json:"age"`
	Phone    string               `json:"phone,omitempty"`
	Email    string               `json:"email,omitempty"`
	Grades   [NumSubjects]float64 `json:"grades"`
	Finished int                  `json:"finished"`
	Total    float64              `json:"totalGrades"`
	GPA      float64              `json:"gpa"`
}

// Enrollment is the two-subject intake form used both for enrolling a new
// student and for upgrading an existing one.
type Enrollment struct {
	Subject1 int     `json:"subject1"`
	Grade1   float64 `json:"grade1"`
	Subject2 int     `json:"subject2"`
	Grade2   float64 `json:"grade2"`
}

// Validate checks the enrollment form: two distinct subject indices in
// [1, NumSubjects] and grades in [MinGrade, MaxGrade].
func (e Enrollment) Validate() error {
	if e.Subject1 < 1 || e.Subject1 > NumSubjects || e.Subject2 < 1 || e.Subject2 > NumSubjects {
		return fmt.Errorf("subject indices must be in [1, %d]", NumSubjects)
	}
	if e.Subject1 == e.Subject2 {
		return errors.New("subject indices must differ")
	}
	if e.Grade1 < MinGrade || e.Grade1 > MaxGrade || e.Grade2 < MinGrade || e.Grade2 > MaxGrade {
		return fmt.Errorf("grades must be in [%g, %g]", MinGrade, MaxGrade)
	}
	return nil
}

// New builds a student with the two finished subjects recorded.
func New(name string, age int, phone, email string, e Enrollment) (*Student, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	s := &Student{
		ID:    uuid.New(),
		Name:  name,
		Age:   age,
		Phone: phone,
		Email: email,
	}
	for i := range s.Grades {
		s.Grades[i] = NotStudied
	}
	s.Record(e)
	return s, nil
}

// Record applies an enrollment's grades and refreshes the aggregates.
func (s *Student) Record(e Enrollment) {
	s.Grades[e.Subject1-1] = e.Grade1
	s.Grades[e.Subject2-1] = e.Grade2
	s.Finished += 2
	s.Total += e.Grade1 + e.Grade2
	s.GPA = s.Total / float64(s.Finished)
}

// Upgrade records two newly finished subjects and bumps the age by one
// academic year.
func (s *Student) Upgrade(e Enrollment) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.Age++
	s.Record(e)
	return nil
}

// ProfileMessage renders the profile as prompt text for the tutor agent.
func (s *Student) ProfileMessage() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Student profile:\n")
	fmt.Fprintf(&sb, "- ID: %s\n", s.ID)
	fmt.Fprintf(&sb, "- Name: %s\n", s.Name)
	fmt.Fprintf(&sb, "- Age: %d\n", s.Age)
	if s.Phone != "" {
		fmt.Fprintf(&sb, "- Phone: %s\n", s.Phone)
	}
	if s.Email != "" {
		fmt.Fprintf(&sb, "- Email: %s\n", s.Email)
	}
	fmt.Fprintf(&sb, "- GPA: %.1f\n", s.GPA)

	sb.WriteString("Finished subjects (graded out of 100):\n")
	var pending []string
	for i, name := range Subjects {
		if s.Grades[i] == NotStudied {
			pending = append(pending, name)
			continue
		}
		fmt.Fprintf(&sb, "- %s: %g\n", name, s.Grades[i])
	}
	if len(pending) > 0 {
		fmt.Fprintf(&sb, "Not studied yet: %s\n", strings.Join(pending, ", "))
	}
	return sb.String()
}
