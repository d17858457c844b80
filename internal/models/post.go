package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is an item of POST_TABLE. userPostIndex (userId, date) serves the
// per-user feed.
type Post struct {
	ID          string    `dynamodbav:"id" json:"id"`
	UserID      string    `dynamodbav:"userId" json:"userId"`
	Date        string    `dynamodbav:"date" json:"date"`
	Description string    `dynamodbav:"description" json:"description"`
	Image       string    `dynamodbav:"image" json:"image"`
	Likes       []string  `dynamodbav:"likes" json:"likes"`
	Coments     []Comment `dynamodbav:"coments" json:"coments"`
}

type Comment struct {
	UserID   string `dynamodbav:"userId" json:"userId"`
	Username string `dynamodbav:"Username" json:"Username"`
	Date     string `dynamodbav:"date" json:"date"`
	Coment   string `dynamodbav:"coment" json:"coment"`
}

func NewPost(userID, description, image string, now time.Time) *Post {
	return &Post{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        FormatDate(now),
		Description: description,
		Image:       image,
		Likes:       []string{},
		Coments:     []Comment{},
	}
}

// FormatDate is the timestamp format stored in every date attribute. It sorts
// lexicographically, which userPostIndex relies on.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Coments == nil {
		p.Coments = []Comment{}
	}
}

// ToggleLike adds userID to the likes or removes it when already present.
// It reports whether the post is liked by userID afterwards.
func (p *Post) ToggleLike(userID string) bool {
	p.Normalize()
	if i := indexOf(p.Likes, userID); i != -1 {
		p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
		return false
	}
	p.Likes = append(p.Likes, userID)
	return true
}

func (p *Post) AddComment(author *User, text string, now time.Time) Comment {
	p.Normalize()
	c := Comment{
		UserID:   author.CognitoID,
		Username: author.Name,
		Date:     FormatDate(now),
		Coment:   text,
	}
	p.Coments = append(p.Coments, c)
	return c
}
