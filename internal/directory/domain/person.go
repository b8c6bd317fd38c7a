package domain

// PersonKind tells which reference table a person was resolved from.
type PersonKind string

const (
	KindStudent PersonKind = "student"
	KindVisitor PersonKind = "visitor"
)

// Person is the resolved reference tuple for someone crossing a checkpoint.
type Person struct {
	ID          string
	Name        string
	Kind        PersonKind
	FacultyCode string // empty for visitors
	SchoolCode  string // empty for visitors
}

// Student is an enrolled-student reference row, keyed by university code.
type Student struct {
	ID          string
	Name        string
	Enrolled    bool
	FacultyCode string
	SchoolCode  string
}

// Visitor is an external person reference row, keyed by national ID.
type Visitor struct {
	ID   string
	Name string
}

// Faculty is a campus faculty reference row.
type Faculty struct {
	Code string
	Name string
}

// School is a professional school belonging to a faculty.
type School struct {
	Code        string
	Name        string
	FacultyCode string
}
