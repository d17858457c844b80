package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"devagram/internal/auth"
	"devagram/internal/config"
	"devagram/internal/db"
	"devagram/internal/models"
	"devagram/internal/response"
)

const feedFailure = "Erro ao buscar feed! tente novamente ou contacte o administrador do sistema"

type feedPage struct {
	Count   int           `json:"count"`
	LastKey *db.Cursor    `json:"lastKey"`
	Data    []models.Post `json:"data"`
}

type FeedHandler struct {
	base
}

func NewFeedHandler(svc Services, cfg *config.Resolver, log zerolog.Logger) *FeedHandler {
	h := &FeedHandler{base: newBase(svc, cfg, log)}
	h.routes = map[string]operation{
		"GET /feed":          {name: "feed", failure: feedFailure, run: h.byUser},
		"GET /feed/{userId}": {name: "feed_by_user", failure: feedFailure, run: h.byUser},
		"GET /feed/home":     {name: "home_feed", failure: feedFailure, run: h.home},
	}
	return h
}

// byUser lists one user's posts, newest first. Without a path id it lists
// the caller's own posts.
func (h *FeedHandler) byUser(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserTable, config.PostBucket, config.PostTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	userID := req.PathParameters["userId"]
	if userID == "" {
		userID = auth.UserID(req)
	}
	u, err := h.currentUser(ctx, h.svc.Users(env.Get(config.UserTable)), userID, msgUserNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	page, err := h.svc.Posts(env.Get(config.PostTable)).QueryByUser(ctx, u.CognitoID, feedCursor(req.QueryStringParameters), h.cfg.PageSize())
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return h.respond(ctx, env.Get(config.PostBucket), page)
}

// home lists posts of everyone the caller follows. The scan behind it has no
// order, so consecutive pages are not sorted by date.
func (h *FeedHandler) home(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	env, err := h.cfg.Resolve(config.UserTable, config.PostBucket, config.PostTable)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	u, err := h.currentUser(ctx, h.svc.Users(env.Get(config.UserTable)), auth.UserID(req), msgUserNotFound)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if len(u.Following) == 0 {
		return response.JSON(http.StatusOK, feedPage{Data: []models.Post{}}), nil
	}
	if len(u.Following) > db.MaxFilterValues {
		log.Warn().Int("following", len(u.Following)).Msg("home feed limited to the first followed users")
	}

	page, err := h.svc.Posts(env.Get(config.PostTable)).ScanByUsers(ctx, u.Following, homeCursor(req.QueryStringParameters), h.cfg.PageSize())
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return h.respond(ctx, env.Get(config.PostBucket), page)
}

func (h *FeedHandler) respond(ctx context.Context, bucket string, page db.Page) (events.APIGatewayV2HTTPResponse, error) {
	images := h.svc.Images()
	for i := range page.Items {
		if err := signImage(ctx, images, bucket, &page.Items[i]); err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
	}
	data := page.Items
	if data == nil {
		data = []models.Post{}
	}
	return response.JSON(http.StatusOK, feedPage{Count: page.Count, LastKey: page.LastKey, Data: data}), nil
}
