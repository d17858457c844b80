package response

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

type message struct {
	Msg   string `json:"msg,omitempty"`
	Error string `json:"error,omitempty"`
}

// Format builds the envelope every handler answers with. A non-nil payload is
// the body as-is; otherwise the message goes under "msg" for 2xx-3xx and under
// "error" for everything else.
func Format(status int, msg string, payload any) events.APIGatewayV2HTTPResponse {
	var body any
	if payload != nil {
		body = payload
	} else {
		m := message{}
		if status >= 200 && status <= 399 {
			m.Msg = msg
		} else {
			m.Error = msg
		}
		body = m
	}

	b, err := json.Marshal(body)
	if err != nil {
		b, _ = json.Marshal(message{Error: "Erro ao serializar resposta"})
		status = 500
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type":                "application/json",
			"access-control-allow-origin": "*",
		},
		Body: string(b),
	}
}

func Message(status int, msg string) events.APIGatewayV2HTTPResponse {
	return Format(status, msg, nil)
}

func JSON(status int, payload any) events.APIGatewayV2HTTPResponse {
	return Format(status, "", payload)
}
