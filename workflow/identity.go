package workflow

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Identity 已验证的调用者；只有学生有 TeamNumber
type Identity struct {
	SubjectID  string `json:"sub"`
	Role       Role   `json:"role"`
	TeamNumber string `json:"team,omitempty"`
}

func (id Identity) is(roles ...Role) bool {
	if id.SubjectID == "" {
		return false
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// staff 讲师或管理员
func (id Identity) staff() bool { return id.is(RoleInstructor, RoleAdmin) }

// canView 学生只能看本队
func (id Identity) canView(teamNumber string) bool {
	if id.staff() {
		return true
	}
	return id.is(RoleStudent) && id.TeamNumber == teamNumber
}
