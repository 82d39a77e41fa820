// Package main flips a policy's validated flag after the signup vehicle
// photo clears fraud review.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/lakeshore-insurance/claims-backend/internal/awsutil"
	"github.com/lakeshore-insurance/claims-backend/internal/config"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/logging"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env  config.Env
	repo *store.Repo
	log  *zap.Logger
}

func main() {
	env := config.MustLoad()
	cfg, _, err := awsutil.Load(context.Background(), env.Region)
	if err != nil {
		log.Fatal(err)
	}
	app := &App{
		env:  env,
		repo: &store.Repo{DB: dynamodb.NewFromConfig(cfg), Table: env.Table},
		log:  logging.New("policyvalidate", env.LogLevel),
	}
	lambda.Start(app.handler)
}

// handler sets validated=true on the verdict's policy. The write is an
// absolute upsert, so redelivered verdicts change nothing.
func (a *App) handler(ctx context.Context, ev awsevents.CloudWatchEvent) error {
	var verdict events.FraudNotDetected
	if err := json.Unmarshal(ev.Detail, &verdict); err != nil {
		return fmt.Errorf("bad %s detail: %w", ev.DetailType, err)
	}
	if verdict.FraudType != events.FraudTypeSignupCar || verdict.RecordID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.env.ReactorTimeout)
	defer cancel()

	err := a.repo.SetPolicyValidated(ctx, verdict.CustomerID, verdict.RecordID)
	if errors.Is(err, store.ErrNotFound) {
		a.log.Error("policy missing for validated verdict",
			zap.String("customerId", verdict.CustomerID),
			zap.String("policyId", verdict.RecordID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("set validated: %w", err)
	}
	a.log.Info("policy validated",
		zap.String("customerId", verdict.CustomerID),
		zap.String("policyId", verdict.RecordID))
	return nil
}
