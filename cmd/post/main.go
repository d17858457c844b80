package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"devagram/internal/handlers"
	"devagram/internal/platform"
)

func main() {
	ctx := context.Background()

	rt, err := platform.Init(ctx, "devagram-post")
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	h := handlers.NewPostHandler(rt.Services, rt.Config, rt.Log)
	lambda.Start(h.Handle)
}
