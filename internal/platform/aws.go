// Package platform builds the AWS-backed collaborators once per cold start.
package platform

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"devagram/internal/config"
	"devagram/internal/db"
	"devagram/internal/events"
	"devagram/internal/identity"
	"devagram/internal/storage"
)

type AWS struct {
	ddb     *dynamodb.Client
	cognito *cip.Client
	images  *storage.S3Images
	events  events.Publisher
}

func New(cfg aws.Config, r *config.Resolver) *AWS {
	p := &AWS{
		ddb:     db.NewDynamoClient(cfg),
		cognito: cip.NewFromConfig(cfg),
		images:  storage.NewS3Images(s3.NewFromConfig(cfg), r.SignedURLTTL()),
		events:  events.Nop{},
	}
	if topic := r.EventsTopic(); topic != "" {
		p.events = events.NewSNSPublisher(sns.NewFromConfig(cfg), topic)
	}
	return p
}

func (p *AWS) Identity(poolID, clientID string) identity.Provider {
	return identity.NewCognito(p.cognito, poolID, clientID)
}

func (p *AWS) Users(table string) db.UserRepository {
	return db.NewUserStore(p.ddb, table)
}

func (p *AWS) Posts(table string) db.PostRepository {
	return db.NewPostStore(p.ddb, table)
}

func (p *AWS) Images() storage.ImageStore {
	return p.images
}

func (p *AWS) Events() events.Publisher {
	return p.events
}
