package models

// User is an item of USER_TABLE, keyed by the Cognito subject.
type User struct {
	CognitoID string   `dynamodbav:"cognitoId" json:"cognitoId"`
	Name      string   `dynamodbav:"name" json:"name"`
	Email     string   `dynamodbav:"email" json:"email"`
	Avatar    string   `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"` // S3 key; a signed URL only in responses
	Followers int      `dynamodbav:"followers" json:"followers"`
	Following []string `dynamodbav:"following" json:"following"`
	Posts     int      `dynamodbav:"posts" json:"posts"`
}

func NewUser(cognitoID, name, email, avatar string) *User {
	return &User{
		CognitoID: cognitoID,
		Name:      name,
		Email:     email,
		Avatar:    avatar,
		Following: []string{},
	}
}

// Normalize fills defaults for items written before a field existed.
func (u *User) Normalize() {
	if u.Following == nil {
		u.Following = []string{}
	}
}

func (u *User) IsFollowing(id string) bool {
	return indexOf(u.Following, id) != -1
}

// ToggleFollow adds or removes target from u.Following and moves the target's
// followers counter the same way. It reports whether u now follows target.
//
// Nothing here is atomic across the two records; callers persist both with
// separate writes.
func (u *User) ToggleFollow(target *User) bool {
	u.Normalize()
	if i := indexOf(u.Following, target.CognitoID); i != -1 {
		u.Following = append(u.Following[:i], u.Following[i+1:]...)
		target.Followers--
		return false
	}
	u.Following = append(u.Following, target.CognitoID)
	target.Followers++
	return true
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
