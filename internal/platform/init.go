package platform

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"

	"devagram/internal/config"
	"devagram/internal/logger"
)

// Runtime is what a Lambda builds at cold start and reuses across invocations.
type Runtime struct {
	Services *AWS
	Config   *config.Resolver
	Log      zerolog.Logger
}

func Init(ctx context.Context, service string) (*Runtime, error) {
	// Lambda execution role credentials
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	r, err := config.Load(ctx, ssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Services: New(awsCfg, r),
		Config:   r,
		Log:      logger.New(service, r.LogLevel()),
	}, nil
}
