// internal/membership/domain.go
package membership

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the kind of library user. The set is closed; each role carries
// its own borrowing limit.
type Role int

const (
	Student Role = iota
	Teacher
	Librarian
)

// Borrowing limits per role.
const (
	StudentLimit   = 5
	TeacherLimit   = 10
	LibrarianLimit = 20
)

var (
	ErrUnknownRole  = errors.New("unknown user kind inserted")
	ErrPatronExists = errors.New("patron already registered")
	ErrNoPatron     = errors.New("patron not registered")
	ErrEmptyName    = errors.New("patron name is empty")
)

func (r Role) String() string {
	switch r {
	case Student:
		return "student"
	case Teacher:
		return "teacher"
	case Librarian:
		return "librarian"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Limit returns how many books a patron with this role may hold.
func (r Role) Limit() int {
	switch r {
	case Teacher:
		return TeacherLimit
	case Librarian:
		return LibrarianLimit
	default:
		return StudentLimit
	}
}

// ParseRole maps a role name to a Role.
func ParseRole(kind string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "student":
		return Student, nil
	case "teacher":
		return Teacher, nil
	case "librarian":
		return Librarian, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, kind)
	}
}
