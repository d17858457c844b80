// Package handlers implements the API Gateway routes of every Lambda.
//
// A handler group owns a route table keyed by RouteKey. Each operation runs
// its steps in order (resolve config, validate input, load the caller, call
// collaborators, persist) and returns on the first failure; nothing is
// retried or rolled back.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"devagram/internal/config"
	"devagram/internal/db"
	"devagram/internal/errs"
	evts "devagram/internal/events"
	"devagram/internal/identity"
	"devagram/internal/logger"
	"devagram/internal/models"
	"devagram/internal/response"
	"devagram/internal/storage"
)

const (
	msgInvalidParams = "Parametros de entrada invalidos"
	msgBadMethod     = "Metodo informado nao e valido"
	msgUserNotFound  = "Usuario nao encontrado"
	msgPostNotFound  = "Publicacao nao encontrada"
	msgBadExtension  = "Extensao informada do arquivo nao e valida"
)

// Services hands out the collaborators. Tables and pool ids are only known
// once config is resolved, so constructors take them per call.
type Services interface {
	Identity(poolID, clientID string) identity.Provider
	Users(table string) db.UserRepository
	Posts(table string) db.PostRepository
	Images() storage.ImageStore
	Events() evts.Publisher
}

type operation struct {
	name    string
	failure string // answer for collaborator failures
	run     func(ctx context.Context, req events.APIGatewayV2HTTPRequest, log zerolog.Logger) (events.APIGatewayV2HTTPResponse, error)
}

type base struct {
	svc    Services
	cfg    *config.Resolver
	log    zerolog.Logger
	now    func() time.Time
	routes map[string]operation
}

func newBase(svc Services, cfg *config.Resolver, log zerolog.Logger) base {
	return base{svc: svc, cfg: cfg, log: log, now: time.Now, routes: map[string]operation{}}
}

// Handle is the lambda.Start entry point of every handler group.
func (b *base) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	op, ok := b.routes[req.RouteKey]
	if !ok {
		return response.Message(http.StatusMethodNotAllowed, msgBadMethod), nil
	}

	log := logger.ForRequest(b.log, req).With().Str("op", op.name).Logger()
	resp, err := op.run(ctx, req, log)
	if err != nil {
		return fail(log, op, err), nil
	}
	return resp, nil
}

func fail(log zerolog.Logger, op operation, err error) events.APIGatewayV2HTTPResponse {
	switch kind := errs.KindOf(err); kind {
	case errs.ConfigurationMissing:
		msg := errs.MessageOf(err)
		log.Error().Str("kind", kind.String()).Msg(msg)
		return response.Message(kind.Status(), msg)
	case errs.InvalidInput, errs.NotFound:
		msg := errs.MessageOf(err)
		log.Info().Str("kind", kind.String()).Msg(msg)
		return response.Message(kind.Status(), msg)
	}

	log.Error().Err(err).Msg(op.name + " failed")
	return response.Message(http.StatusInternalServerError, op.failure)
}

// publish is best effort: a lost notification never fails the request.
func (b *base) publish(ctx context.Context, log zerolog.Logger, ev evts.Event) {
	if err := b.svc.Events().Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("publish event failed")
	}
}

// currentUser loads the authenticated caller; missing claims and missing
// records both answer notFound.
func (b *base) currentUser(ctx context.Context, users db.UserRepository, userID, notFound string) (*models.User, error) {
	if userID == "" {
		return nil, errs.NewNotFound(notFound)
	}
	u, err := users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NewNotFound(notFound)
	}
	return u, nil
}
