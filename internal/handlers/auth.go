package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"devagram/internal/config"
	"devagram/internal/errs"
	evts "devagram/internal/events"
	"devagram/internal/models"
	"devagram/internal/response"
	"devagram/internal/storage"
	"devagram/internal/validation"
)

// AuthHandler serves account creation and password recovery.
type AuthHandler struct {
	base
}

func NewAuthHandler(svc Services, cfg *config.Resolver, log zerolog.Logger) *AuthHandler {
	h := &AuthHandler{base: newBase(svc, cfg, log)}
	h.routes = map[string]operation{
		"POST /register": {
			name:    "register",
			failure: "Erro ao cadastrar usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.register,
		},
		"POST /confirm-email": {
			name:    "confirm_email",
			failure: "Erro ao confirmar usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.confirmEmail,
		},
		"POST /forgot-password": {
			name:    "forgot_password",
			failure: "Erro ao solicitar troca de senha de usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.forgotPassword,
		},
		"POST /change-password": {
			name:    "change_password",
			failure: "Erro ao trocar de senha do usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.changePassword,
		},
	}
	return h
}

func (h *AuthHandler) register(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserPoolID, config.UserPoolClientID, config.AvatarBucket, config.UserTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if strings.TrimSpace(req.Body) == "" {
		return events.APIGatewayV2HTTPResponse{}, errs.NewInvalidInput(msgInvalidParams)
	}

	f, err := parseForm(req)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	in := registerRequest{
		Email:    f.get("email"),
		Password: f.get("password"),
		Name:     f.get("name"),
		Filename: f.filename(),
	}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	sub, err := h.svc.Identity(env.Get(config.UserPoolID), env.Get(config.UserPoolClientID)).SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	var avatar string
	if f.file != nil {
		// an upload followed by a failed create leaves the object behind
		avatar, err = h.svc.Images().SaveImage(ctx, env.Get(config.AvatarBucket), storage.AvatarPrefix, *f.file)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
	}

	if err := h.svc.Users(env.Get(config.UserTable)).Create(ctx, models.NewUser(sub, in.Name, in.Email, avatar)); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	log.Info().Str("user_id", sub).Msg("user registered")
	h.publish(ctx, log, evts.Event{Type: evts.UserRegistered, ActorID: sub})
	return response.Message(http.StatusOK, "Usuario cadastrado com sucesso!"), nil
}

func (h *AuthHandler) confirmEmail(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserPoolID, config.UserPoolClientID)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	var in confirmEmailRequest
	if err := decodeJSON(req, &in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	if err := h.svc.Identity(env.Get(config.UserPoolID), env.Get(config.UserPoolClientID)).ConfirmEmail(ctx, in.Email, in.Code); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response.Message(http.StatusOK, "Usuario verificado com sucesso!"), nil
}

func (h *AuthHandler) forgotPassword(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserPoolID, config.UserPoolClientID)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	var in forgotPasswordRequest
	if err := decodeJSON(req, &in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	if err := h.svc.Identity(env.Get(config.UserPoolID), env.Get(config.UserPoolClientID)).ForgotPassword(ctx, in.Email); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response.Message(http.StatusOK, "Solicitacao de troca de senha enviada com sucesso!"), nil
}

func (h *AuthHandler) changePassword(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserPoolID, config.UserPoolClientID)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	var in changePasswordRequest
	if err := decodeJSON(req, &in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	if err := h.svc.Identity(env.Get(config.UserPoolID), env.Get(config.UserPoolClientID)).ChangePassword(ctx, in.Email, in.Password, in.Code); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response.Message(http.StatusOK, "Senha alterada com sucesso!"), nil
}

// LoginHandler exchanges credentials for pool tokens.
type LoginHandler struct {
	base
}

func NewLoginHandler(svc Services, cfg *config.Resolver, log zerolog.Logger) *LoginHandler {
	h := &LoginHandler{base: newBase(svc, cfg, log)}
	h.routes = map[string]operation{
		"POST /login": {
			name:    "login",
			failure: "Erro ao autenticar usuario! tente novamente ou contacte o administrador do sistema",
			run:     h.login,
		},
	}
	return h
}

func (h *LoginHandler) login(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserPoolID, config.UserPoolClientID)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	var in loginRequest
	if err := decodeJSON(req, &in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	session, err := h.svc.Identity(env.Get(config.UserPoolID), env.Get(config.UserPoolClientID)).Login(ctx, in.Login, in.Password)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response.JSON(http.StatusOK, session), nil
}
