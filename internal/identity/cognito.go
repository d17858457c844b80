// Package identity talks to the Cognito user pool that owns credentials.
package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type Session struct {
	Email        string `json:"email"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type Provider interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	ConfirmEmail(ctx context.Context, email, code string) error
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, email, password, code string) error
	Login(ctx context.Context, login, password string) (Session, error)
}

// CognitoAPI is the subset of the user-pool client used here.
type CognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
}

type Cognito struct {
	client   CognitoAPI
	poolID   string
	clientID string
}

func NewCognito(client CognitoAPI, poolID, clientID string) *Cognito {
	return &Cognito{client: client, poolID: poolID, clientID: clientID}
}

// SignUp registers the email as username and returns the pool subject id.
func (c *Cognito) SignUp(ctx context.Context, email, password string) (string, error) {
	out, err := c.client.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("cognito signup: %w", err)
	}
	sub := aws.ToString(out.UserSub)
	if sub == "" {
		return "", fmt.Errorf("cognito signup: empty user sub")
	}
	return sub, nil
}

func (c *Cognito) ConfirmEmail(ctx context.Context, email, code string) error {
	_, err := c.client.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return fmt.Errorf("cognito confirm signup: %w", err)
	}
	return nil
}

func (c *Cognito) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		return fmt.Errorf("cognito forgot password: %w", err)
	}
	return nil
}

func (c *Cognito) ChangePassword(ctx context.Context, email, password, code string) error {
	_, err := c.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		Password:         aws.String(password),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return fmt.Errorf("cognito confirm forgot password: %w", err)
	}
	return nil
}

func (c *Cognito) Login(ctx context.Context, login, password string) (Session, error) {
	out, err := c.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(c.clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": login,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return Session{}, fmt.Errorf("cognito initiate auth: %w", err)
	}
	if out.AuthenticationResult == nil {
		// a challenge (new password, MFA) is not something these clients handle
		return Session{}, fmt.Errorf("cognito initiate auth: challenge %s", out.ChallengeName)
	}
	return Session{
		Email:        login,
		Token:        aws.ToString(out.AuthenticationResult.AccessToken),
		RefreshToken: aws.ToString(out.AuthenticationResult.RefreshToken),
	}, nil
}
