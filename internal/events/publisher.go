// Package events announces domain changes on an SNS topic.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	UserRegistered = "user.registered"
	UserFollowed   = "user.followed"
	UserUnfollowed = "user.unfollowed"
	PostCreated    = "post.created"
	PostLiked      = "post.liked"
	PostCommented  = "post.commented"
)

type Event struct {
	Type     string            `json:"type"`
	ActorID  string            `json:"actorId"`
	TargetID string            `json:"targetId,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Time     string            `json:"time"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSAPI
	topicArn string
	now      func() time.Time
}

func NewSNSPublisher(client SNSAPI, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn, now: time.Now}
}

func (p *SNSPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.Time == "" {
		ev.Time = p.now().UTC().Format(time.RFC3339)
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicArn),
		Message:  aws.String(string(b)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(ev.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", ev.Type, err)
	}
	return nil
}

// Nop drops every event. Used when no topic is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
