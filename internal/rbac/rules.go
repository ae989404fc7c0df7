package rbac

const (
	PermQuestionsGenerate = "questions:generate"
	PermQuestionsView     = "questions:view"
	PermSetsCreate        = "sets:create"
	PermSetsView          = "sets:view"
	PermAnswersRecord     = "answers:record"
	PermOpinionsRecord    = "opinions:record"
	PermMaterialsGenerate = "materials:generate"
	PermMaterialsView     = "materials:view"
	PermEventsView        = "events:view"
)

const (
	RoleStudent = "student"
	RoleAuthor  = "author"
	RoleAdmin   = "admin"
)

// Default policy. Authors may trigger generation; students only consume.
var RolePermissions = map[string][]string{
	RoleStudent: {
		PermQuestionsView,
		PermSetsCreate,
		PermSetsView,
		PermAnswersRecord,
		PermOpinionsRecord,
		PermMaterialsView,
	},
	RoleAuthor: {
		"questions:*",
		"sets:*",
		"materials:*",
		PermAnswersRecord,
		PermOpinionsRecord,
	},
	RoleAdmin: {
		"*",
	},
}

// ValidRole reports whether role has an entry in the default policy.
func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
