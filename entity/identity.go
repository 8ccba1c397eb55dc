package entity

type Role string

const (
	RoleBuyer    Role = "BUYER"
	RoleOperator Role = "OPERATOR"
)

// Identity is the caller as resolved by the identity capability.
// The zero value is an anonymous caller.
type Identity struct {
	BuyerID string `json:"buyer_id"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
}

func (i Identity) IsAnonymous() bool {
	return i.BuyerID == ""
}

func (i Identity) IsOperator() bool {
	return i.Role == RoleOperator
}
