// Package main runs the onboarding reactor: it consumes Customer.Submitted
// events and creates the customer, its policies, and the upload handles.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lakeshore-insurance/claims-backend/internal/awsutil"
	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/config"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/logging"
	"github.com/lakeshore-insurance/claims-backend/internal/onboarding"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env     config.Env
	reactor *onboarding.Reactor
}

func main() {
	env := config.MustLoad()
	cfg, endpoint, err := awsutil.Load(context.Background(), env.Region)
	if err != nil {
		log.Fatal(err)
	}

	s3c := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true // localstack/dev friendliness
		}
	})

	app := &App{
		env: env,
		reactor: &onboarding.Reactor{
			Store:   &store.Repo{DB: dynamodb.NewFromConfig(cfg), Table: env.Table},
			Uploads: &s3io.Issuer{Presign: s3.NewPresignClient(s3c), Bucket: env.Bucket, TTL: env.PresignTTL},
			Bus:     &bus.EventBridge{Client: eventbridge.NewFromConfig(cfg), BusName: env.BusName},
			Log:     logging.New("onboarding", env.LogLevel),
		},
	}
	lambda.Start(app.handler)
}

// handler processes one Customer.Submitted envelope.
func (a *App) handler(ctx context.Context, ev awsevents.CloudWatchEvent) error {
	var sub events.CustomerSubmitted
	if err := json.Unmarshal(ev.Detail, &sub); err != nil {
		return fmt.Errorf("bad %s detail: %w", ev.DetailType, err)
	}
	ctx, cancel := context.WithTimeout(ctx, a.env.ReactorTimeout)
	defer cancel()
	return a.reactor.Handle(ctx, sub)
}
