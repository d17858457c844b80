package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"devagram/internal/models"
)

// ErrAlreadyExists is returned by Create when the key is taken.
var ErrAlreadyExists = errors.New("item already exists")

type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
}

type UserStore struct {
	client DynamoAPI
	table  string
}

func NewUserStore(client DynamoAPI, table string) *UserStore {
	return &UserStore{client: client, table: table}
}

// Get returns nil, nil when no user has the id.
func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"cognitoId": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var u models.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	u.Normalize()
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return s.put(ctx, u, aws.String("attribute_not_exists(cognitoId)"))
}

// Update overwrites the whole item. There is no version check, so concurrent
// read-modify-write cycles on the same user can lose counter updates.
func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	return s.put(ctx, u, nil)
}

func (s *UserStore) put(ctx context.Context, u *models.User, cond *string) error {
	u.Normalize()
	av, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: cond,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("put user %s: %w", u.CognitoID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("put user %s: %w", u.CognitoID, err)
	}
	return nil
}
