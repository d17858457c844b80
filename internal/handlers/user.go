package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"devagram/internal/auth"
	"devagram/internal/config"
	"devagram/internal/models"
	"devagram/internal/response"
	"devagram/internal/storage"
	"devagram/internal/validation"
)

type UserHandler struct {
	base
}

func NewUserHandler(svc Services, cfg *config.Resolver, log zerolog.Logger) *UserHandler {
	h := &UserHandler{base: newBase(svc, cfg, log)}
	h.routes = map[string]operation{
		"GET /user": {
			name:    "get_current_user",
			failure: "Erro ao buscar dados do usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.me,
		},
		"PUT /user": {
			name:    "update_current_user",
			failure: "Erro ao alterar dados do usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.update,
		},
		"GET /user/{userId}": {
			name:    "get_user",
			failure: "Erro ao buscar dados do usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.byID,
		},
	}
	return h
}

func (h *UserHandler) me(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	return h.show(ctx, auth.UserID(req))
}

func (h *UserHandler) byID(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	return h.show(ctx, req.PathParameters["userId"])
}

func (h *UserHandler) show(ctx context.Context, userID string) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserTable, config.AvatarBucket)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	u, err := h.currentUser(ctx, h.svc.Users(env.Get(config.UserTable)), userID, msgUserNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := h.signAvatar(ctx, env.Get(config.AvatarBucket), u); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response.JSON(http.StatusOK, u), nil
}

func (h *UserHandler) update(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserTable, config.AvatarBucket)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	users := h.svc.Users(env.Get(config.UserTable))
	u, err := h.currentUser(ctx, users, auth.UserID(req), msgUserNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	f, err := parseForm(req)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	in := updateUserRequest{Name: f.get("name"), Filename: f.filename()}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	if in.Name != "" {
		u.Name = in.Name
	}
	if f.file != nil {
		key, err := h.svc.Images().SaveImage(ctx, env.Get(config.AvatarBucket), storage.AvatarPrefix, *f.file)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		u.Avatar = key
	}

	if err := users.Update(ctx, u); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response.Message(http.StatusOK, "Usuario alterado com sucesso!"), nil
}

// signAvatar swaps the stored key for a signed URL on the response copy only.
func (h *UserHandler) signAvatar(ctx context.Context, bucket string, u *models.User) error {
	if u.Avatar == "" {
		return nil
	}
	url, err := h.svc.Images().SignedURL(ctx, bucket, u.Avatar)
	if err != nil {
		return err
	}
	u.Avatar = url
	return nil
}
