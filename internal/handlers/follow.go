package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"devagram/internal/auth"
	"devagram/internal/config"
	"devagram/internal/errs"
	evts "devagram/internal/events"
	"devagram/internal/response"
)

const msgFollowTargetNotFound = "Usuario a ser seguido nao encontrado"

type FollowHandler struct {
	base
}

func NewFollowHandler(svc Services, cfg *config.Resolver, log zerolog.Logger) *FollowHandler {
	h := &FollowHandler{base: newBase(svc, cfg, log)}
	h.routes = map[string]operation{
		"PUT /follow/{followId}": {
			name:    "toggle_follow",
			failure: "Erro ao seguir/desseguir um usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.toggle,
		},
	}
	return h
}

// toggle follows or unfollows the path user. The caller and the target are
// written with two independent puts; a failure between them leaves the
// target's followers counter out of step.
func (h *FollowHandler) toggle(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	users := h.svc.Users(env.Get(config.UserTable))
	me, err := h.currentUser(ctx, users, auth.UserID(req), "Usuario logado nao encontrado")
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	followID := req.PathParameters["followId"]
	if followID == "" {
		return events.APIGatewayV2HTTPResponse{}, errs.NewNotFound(msgFollowTargetNotFound)
	}
	if followID == me.CognitoID {
		return events.APIGatewayV2HTTPResponse{}, errs.NewInvalidInput("Usuario nao pode seguir a si mesmo")
	}
	target, err := h.currentUser(ctx, users, followID, msgFollowTargetNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	following := me.ToggleFollow(target)
	if err := users.Update(ctx, me); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := users.Update(ctx, target); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	if !following {
		h.publish(ctx, log, evts.Event{Type: evts.UserUnfollowed, ActorID: me.CognitoID, TargetID: target.CognitoID})
		return response.Message(http.StatusOK, "Usuario deixado de seguir com sucesso!"), nil
	}
	h.publish(ctx, log, evts.Event{Type: evts.UserFollowed, ActorID: me.CognitoID, TargetID: target.CognitoID})
	return response.Message(http.StatusOK, "Usuario seguido com sucesso!"), nil
}
