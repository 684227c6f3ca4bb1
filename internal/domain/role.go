package domain

// Marketplace roles. A freshly registered user has neither.
const (
	RoleCustomer = "customer"
	RoleExecutor = "executor"
)

// Role describes a selectable marketplace role.
type Role struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Roles lists every role a user may select, in display order.
var Roles = []Role{
	{Name: RoleCustomer, Label: "Customer"},
	{Name: RoleExecutor, Label: "Executor"},
}

func IsSelectableRole(name string) bool {
	for _, r := range Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
