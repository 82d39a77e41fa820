// Package main runs the fraud decision engine over Document.Processed events.
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
	"github.com/lakeshore-insurance/claims-backend/internal/fraud"
	"github.com/lakeshore-insurance/claims-backend/internal/logging"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env    config.Env
	engine *fraud.Engine
}

func main() {
	env := config.MustLoad()
	cfg, _, err := awsutil.Load(context.Background(), env.Region)
	if err != nil {
		log.Fatal(err)
	}
	app := &App{
		env: env,
		engine: &fraud.Engine{
			Store: &store.Repo{DB: dynamodb.NewFromConfig(cfg), Table: env.Table},
			Bus:   &bus.EventBridge{Client: eventbridge.NewFromConfig(cfg), BusName: env.BusName},
			Log:   logging.New("fraud", env.LogLevel),
		},
	}
	lambda.Start(app.handler)
}

// handler evaluates one Document.Processed envelope.
func (a *App) handler(ctx context.Context, ev awsevents.CloudWatchEvent) error {
	var doc events.DocumentProcessed
	if err := json.Unmarshal(ev.Detail, &doc); err != nil {
		return fmt.Errorf("bad %s detail: %w", ev.DetailType, err)
	}
	ctx, cancel := context.WithTimeout(ctx, a.env.ReactorTimeout)
	defer cancel()
	return a.engine.Evaluate(ctx, doc)
}
