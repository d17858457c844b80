package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"devagram/internal/models"
)

const (
	UserPostIndex = "userPostIndex"

	// MaxFilterValues is the DynamoDB limit on operands of an IN comparator.
	MaxFilterValues = 100
)

// Cursor is the last evaluated key of a page. Query pages on userPostIndex
// carry all three attributes; table scans only carry ID.
type Cursor struct {
	ID     string `dynamodbav:"id" json:"id"`
	UserID string `dynamodbav:"userId,omitempty" json:"userId,omitempty"`
	Date   string `dynamodbav:"date,omitempty" json:"date,omitempty"`
}

type Page struct {
	Items   []models.Post
	Count   int
	LastKey *Cursor
}

type PostRepository interface {
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	QueryByUser(ctx context.Context, userID string, cursor *Cursor, limit int32) (Page, error)
	ScanByUsers(ctx context.Context, userIDs []string, cursor *Cursor, limit int32) (Page, error)
}

type PostStore struct {
	client DynamoAPI
	table  string
}

func NewPostStore(client DynamoAPI, table string) *PostStore {
	return &PostStore{client: client, table: table}
}

// Get returns nil, nil when no post has the id.
func (s *PostStore) Get(ctx context.Context, id string) (*models.Post, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var p models.Post
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal post: %w", err)
	}
	p.Normalize()
	return &p, nil
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	return s.put(ctx, p, aws.String("attribute_not_exists(id)"))
}

func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	return s.put(ctx, p, nil)
}

func (s *PostStore) put(ctx context.Context, p *models.Post, cond *string) error {
	p.Normalize()
	av, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: cond,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("put post %s: %w", p.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("put post %s: %w", p.ID, err)
	}
	return nil
}

// QueryByUser pages through one user's posts, newest first.
func (s *PostStore) QueryByUser(ctx context.Context, userID string, cursor *Cursor, limit int32) (Page, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(UserPostIndex),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if cursor != nil {
		in.ExclusiveStartKey = cursor.key()
	}

	out, err := s.client.Query(ctx, in)
	if err != nil {
		return Page{}, fmt.Errorf("query posts of %s: %w", userID, err)
	}
	return toPage(out.Items, out.LastEvaluatedKey)
}

// ScanByUsers pages through posts authored by any of userIDs. Scan order is
// the table's physical order, so pages are not sorted by date. Only the
// first MaxFilterValues ids are used.
func (s *PostStore) ScanByUsers(ctx context.Context, userIDs []string, cursor *Cursor, limit int32) (Page, error) {
	if len(userIDs) == 0 {
		return Page{Items: []models.Post{}}, nil
	}
	if len(userIDs) > MaxFilterValues {
		userIDs = userIDs[:MaxFilterValues]
	}

	names := make([]string, len(userIDs))
	values := make(map[string]types.AttributeValue, len(userIDs))
	for i, id := range userIDs {
		names[i] = fmt.Sprintf(":u%d", i)
		values[names[i]] = &types.AttributeValueMemberS{Value: id}
	}

	in := &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          aws.String("userId IN (" + strings.Join(names, ", ") + ")"),
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(limit),
	}
	if cursor != nil {
		in.ExclusiveStartKey = cursor.key()
	}

	out, err := s.client.Scan(ctx, in)
	if err != nil {
		return Page{}, fmt.Errorf("scan posts: %w", err)
	}
	return toPage(out.Items, out.LastEvaluatedKey)
}

func toPage(items []map[string]types.AttributeValue, lek map[string]types.AttributeValue) (Page, error) {
	posts := []models.Post{}
	if err := attributevalue.UnmarshalListOfMaps(items, &posts); err != nil {
		return Page{}, fmt.Errorf("unmarshal posts: %w", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}

	page := Page{Items: posts, Count: len(posts)}
	if len(lek) > 0 {
		var c Cursor
		if err := attributevalue.UnmarshalMap(lek, &c); err != nil {
			return Page{}, fmt.Errorf("unmarshal last key: %w", err)
		}
		page.LastKey = &c
	}
	return page, nil
}

func (c *Cursor) key() map[string]types.AttributeValue {
	k := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: c.ID},
	}
	if c.UserID != "" {
		k["userId"] = &types.AttributeValueMemberS{Value: c.UserID}
	}
	if c.Date != "" {
		k["date"] = &types.AttributeValueMemberS{Value: c.Date}
	}
	return k
}
