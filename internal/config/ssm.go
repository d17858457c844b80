package config

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type SSMClient interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSMProvider is a koanf.Provider that reads every parameter below a path.
// Keys are the last path segment: /devagram/prod/USER_TABLE -> USER_TABLE.
type SSMProvider struct {
	ctx    context.Context
	client SSMClient
	path   string
}

func NewSSMProvider(ctx context.Context, client SSMClient, path string) *SSMProvider {
	return &SSMProvider{ctx: ctx, client: client, path: path}
}

func (p *SSMProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("ssm provider does not support ReadBytes")
}

func (p *SSMProvider) Read() (map[string]interface{}, error) {
	out := map[string]interface{}{}

	var next *string
	for {
		res, err := p.client.GetParametersByPath(p.ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(p.path),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      next,
		})
		if err != nil {
			return nil, fmt.Errorf("ssm get parameters by path: %w", err)
		}

		for _, prm := range res.Parameters {
			name := strings.TrimSpace(aws.ToString(prm.Name))
			if name == "" {
				continue
			}
			out[path.Base(name)] = aws.ToString(prm.Value)
		}

		if res.NextToken == nil || aws.ToString(res.NextToken) == "" {
			break
		}
		next = res.NextToken
	}

	return out, nil
}
