package types

// Identity is a logged in account as reported by the login collaborator.
type Identity struct {
	UID      uint64 `json:"uid"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UserWithTemplates is one row of the user/template join shown in the UI.
type UserWithTemplates struct {
	User      Identity        `json:"user"`
	Templates []NamedTemplate `json:"templates"`
	Expanded  bool            `json:"expanded"`
}
