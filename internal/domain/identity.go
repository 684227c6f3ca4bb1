package domain

// Identity is the authenticated caller handed to every operation that acts on
// behalf of a user. Role is empty until the user selects one.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) HasRole() bool { return i.Role != "" }

// TokenPair is a freshly minted access/refresh credential pair.
type TokenPair struct {
	Access           string `json:"access"`
	Refresh          string `json:"refresh"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}
