package auth

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// UserID returns the Cognito subject the HTTP API JWT authorizer put in the
// request context, or "" when the request carries no claims.
func UserID(req events.APIGatewayV2HTTPRequest) string {
	a := req.RequestContext.Authorizer
	if a == nil || a.JWT == nil || a.JWT.Claims == nil {
		return ""
	}
	return strings.TrimSpace(a.JWT.Claims["sub"])
}

// WithUserID returns a copy of req carrying sub as the authorizer subject.
func WithUserID(req events.APIGatewayV2HTTPRequest, sub string) events.APIGatewayV2HTTPRequest {
	req.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
		JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
			Claims: map[string]string{"sub": sub},
		},
	}
	return req
}
