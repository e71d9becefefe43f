// internal/access/level.go
package access

import (
	"fmt"
	"strings"
)

// Level is a named access requirement for a course operation. The four
// levels are not a strict total order: MANAGE and ADMIN share one
// requirement, and instructors satisfy EDIT without satisfying MANAGE.
type Level int

const (
	// LevelView is required to read course content
	LevelView Level = iota

	// LevelEdit is required to modify course content
	LevelEdit

	// LevelManage is required for course administration (delete,
	// enrollment management)
	LevelManage

	// LevelAdmin is the strongest course-level requirement; outside the
	// admin-role short-circuit it is equivalent to LevelManage
	LevelAdmin
)

// String returns the lowercase name of the level
func (l Level) String() string {
	switch l {
	case LevelView:
		return "view"
	case LevelEdit:
		return "edit"
	case LevelManage:
		return "manage"
	case LevelAdmin:
		return "admin"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a level name; the zero value and an error are
// returned for unknown names
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return LevelView, nil
	case "edit":
		return LevelEdit, nil
	case "manage":
		return LevelManage, nil
	case "admin":
		return LevelAdmin, nil
	default:
		return LevelView, fmt.Errorf("unknown access level: %q", s)
	}
}
