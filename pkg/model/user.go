package model

const UnknownDisplayName = "Unknown"

type User struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Username string `json:"username,omitempty" bson:"username,omitempty"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
}

func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return UnknownDisplayName
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return UnknownDisplayName
	}
}
