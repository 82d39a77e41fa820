// Package main runs the claims reactor over the buffering queue. The queue
// absorbs submission bursts; each message body is a bus envelope carrying a
// Claim.Requested detail.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lakeshore-insurance/claims-backend/internal/awsutil"
	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/claims"
	"github.com/lakeshore-insurance/claims-backend/internal/config"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
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
	reactor *claims.Reactor
	log     *zap.Logger
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
	logger := logging.New("claims", env.LogLevel)

	app := &App{
		env: env,
		log: logger,
		reactor: &claims.Reactor{
			Store:   &store.Repo{DB: dynamodb.NewFromConfig(cfg), Table: env.Table},
			Uploads: &s3io.Issuer{Presign: s3.NewPresignClient(s3c), Bucket: env.Bucket, TTL: env.PresignTTL},
			Bus:     &bus.EventBridge{Client: eventbridge.NewFromConfig(cfg), BusName: env.BusName},
			Log:     logger,
		},
	}
	lambda.Start(app.handler)
}

// handler processes a batch of buffered claim requests. Failed records are
// reported back so the queue redelivers only those.
func (a *App) handler(ctx context.Context, ev awsevents.SQSEvent) (awsevents.SQSEventResponse, error) {
	var resp awsevents.SQSEventResponse
	for _, rec := range ev.Records {
		if err := a.processRecord(ctx, rec); err != nil {
			a.log.Error("claim record failed", zap.String("messageId", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures,
				awsevents.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (a *App) processRecord(ctx context.Context, rec awsevents.SQSMessage) error {
	var env awsevents.CloudWatchEvent
	if err := json.Unmarshal([]byte(rec.Body), &env); err != nil {
		return fmt.Errorf("bad envelope: %w", err)
	}
	var req events.ClaimRequested
	if err := json.Unmarshal(env.Detail, &req); err != nil {
		return fmt.Errorf("bad %s detail: %w", env.DetailType, err)
	}
	runCtx, cancel := context.WithTimeout(ctx, a.env.ReactorTimeout)
	defer cancel()
	return a.reactor.Handle(runCtx, req)
}
