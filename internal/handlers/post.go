package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"devagram/internal/auth"
	"devagram/internal/config"
	"devagram/internal/db"
	"devagram/internal/errs"
	evts "devagram/internal/events"
	"devagram/internal/models"
	"devagram/internal/response"
	"devagram/internal/storage"
	"devagram/internal/validation"
)

type PostHandler struct {
	base
}

func NewPostHandler(svc Services, cfg *config.Resolver, log zerolog.Logger) *PostHandler {
	h := &PostHandler{base: newBase(svc, cfg, log)}
	h.routes = map[string]operation{
		"POST /post": {
			name:    "create_post",
			failure: "Erro ao criar publicacao! tente novamente ou contacte o administrador do sistema",
			run:     h.create,
		},
		"GET /post/{postId}": {
			name:    "get_post",
			failure: "Erro ao buscar dados da publicacao! tente novamente ou contacte o administrador do sistema",
			run:     h.get,
		},
		"PUT /post/{postId}/like": {
			name:    "toggle_like",
			failure: "Erro ao curtir/descurtir publicacao! tente novamente ou contacte o administrador do sistema",
			run:     h.toggleLike,
		},
		"PUT /post/{postId}/coment": {
			name:    "post_comment",
			failure: "Erro ao comentar na publicacao! tente novamente ou contacte o administrador do sistema",
			run:     h.comment,
		},
	}
	return h
}

func (h *PostHandler) create(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.PostBucket, config.PostTable, config.UserTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	users := h.svc.Users(env.Get(config.UserTable))
	author, err := h.currentUser(ctx, users, auth.UserID(req), msgUserNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	f, err := parseForm(req)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	in := createPostRequest{Description: f.get("description"), Filename: f.filename()}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	key, err := h.svc.Images().SaveImage(ctx, env.Get(config.PostBucket), storage.PostPrefix, *f.file)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	post := models.NewPost(author.CognitoID, in.Description, key, h.now())
	if err := h.svc.Posts(env.Get(config.PostTable)).Create(ctx, post); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	// read-modify-write: concurrent posts by the same author can drop an increment
	author.Posts++
	if err := users.Update(ctx, author); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	h.publish(ctx, log, evts.Event{Type: evts.PostCreated, ActorID: author.CognitoID, TargetID: post.ID})
	return response.Message(http.StatusOK, "Publicacao criada com sucesso!"), nil
}

func (h *PostHandler) get(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.PostBucket, config.PostTable, config.UserTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	if _, err := h.currentUser(ctx, h.svc.Users(env.Get(config.UserTable)), auth.UserID(req), msgUserNotFound); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	post, err := loadPost(ctx, h.svc.Posts(env.Get(config.PostTable)), req.PathParameters["postId"])
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := signImage(ctx, h.svc.Images(), env.Get(config.PostBucket), post); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response.JSON(http.StatusOK, post), nil
}

func (h *PostHandler) toggleLike(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.PostTable, config.UserTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	u, err := h.currentUser(ctx, h.svc.Users(env.Get(config.UserTable)), auth.UserID(req), msgUserNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	posts := h.svc.Posts(env.Get(config.PostTable))
	post, err := loadPost(ctx, posts, req.PathParameters["postId"])
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	liked := post.ToggleLike(u.CognitoID)
	if err := posts.Update(ctx, post); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	if !liked {
		return response.Message(http.StatusOK, "Like removido com sucesso!"), nil
	}
	h.publish(ctx, log, evts.Event{Type: evts.PostLiked, ActorID: u.CognitoID, TargetID: post.ID})
	return response.Message(http.StatusOK, "Like adicionado com sucesso!"), nil
}

func (h *PostHandler) comment(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.PostTable, config.UserTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	u, err := h.currentUser(ctx, h.svc.Users(env.Get(config.UserTable)), auth.UserID(req), msgUserNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	posts := h.svc.Posts(env.Get(config.PostTable))
	post, err := loadPost(ctx, posts, req.PathParameters["postId"])
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	var in commentRequest
	if err := decodeJSON(req, &in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := validation.Check(&in); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	post.AddComment(u, in.Coment, h.now())
	if err := posts.Update(ctx, post); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	h.publish(ctx, log, evts.Event{Type: evts.PostCommented, ActorID: u.CognitoID, TargetID: post.ID})
	return response.Message(http.StatusOK, "Comentario adicionado com sucesso"), nil
}

func loadPost(ctx context.Context, posts db.PostRepository, id string) (*models.Post, error) {
	if id == "" {
		return nil, errs.NewNotFound(msgPostNotFound)
	}
	post, err := posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errs.NewNotFound(msgPostNotFound)
	}
	return post, nil
}

// signImage replaces the stored key with a signed URL in the response copy.
func signImage(ctx context.Context, images storage.ImageStore, bucket string, p *models.Post) error {
	if p.Image == "" {
		return nil
	}
	url, err := images.SignedURL(ctx, bucket, p.Image)
	if err != nil {
		return err
	}
	p.Image = url
	return nil
}
