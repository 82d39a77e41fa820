// Package main serves the customer-initiated deletion endpoint, cascading
// removal of records and uploaded objects.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/lakeshore-insurance/claims-backend/internal/authz"
	"github.com/lakeshore-insurance/claims-backend/internal/awsutil"
	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/cleanup"
	"github.com/lakeshore-insurance/claims-backend/internal/config"
	"github.com/lakeshore-insurance/claims-backend/internal/httpx"
	"github.com/lakeshore-insurance/claims-backend/internal/logging"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env     config.Env
	reactor *cleanup.Reactor
	log     *zap.Logger
}

// objectDeleter binds the prefix delete to one bucket.
type objectDeleter struct {
	client s3io.ObjectAPI
	bucket string
}

func (d *objectDeleter) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return s3io.DeletePrefix(ctx, d.client, d.bucket, prefix)
}

func main() {
	env := config.MustLoad()
	cfg, endpoint, err := awsutil.Load(context.Background(), env.Region)
	if err != nil {
		log.Fatal(err)
	}

	s3c := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
		}
	})
	logger := logging.New("cleanup", env.LogLevel)

	app := &App{
		env: env,
		log: logger,
		reactor: &cleanup.Reactor{
			Store:   &store.Repo{DB: dynamodb.NewFromConfig(cfg), Table: env.Table},
			Objects: &objectDeleter{client: s3c, bucket: env.Bucket},
			Bus:     &bus.EventBridge{Client: eventbridge.NewFromConfig(cfg), BusName: env.BusName},
			Log:     logger,
		},
	}
	lambda.Start(app.handler)
}

// handler authenticates the caller and runs the cascade, returning the
// structured partial result.
func (a *App) handler(ctx context.Context, req awsevents.APIGatewayV2HTTPRequest) (awsevents.APIGatewayV2HTTPResponse, error) {
	token, err := authz.FromAPIGWv2(req, a.env.DevBypassAuth)
	if err != nil {
		return httpx.Error(http.StatusUnauthorized, "missing user")
	}

	ctx, cancel := context.WithTimeout(ctx, a.env.ReactorTimeout)
	defer cancel()

	res, err := a.reactor.Handle(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return httpx.Error(http.StatusNotFound, "unknown customer")
	}
	if err != nil {
		a.log.Error("cleanup failed", zap.Error(err))
		return httpx.Error(http.StatusInternalServerError, "cleanup error")
	}
	status := http.StatusOK
	if len(res.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	return httpx.JSON(status, res)
}
