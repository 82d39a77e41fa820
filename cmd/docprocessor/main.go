// Package main runs the document pipeline: every uploaded object is
// classified and extracted, ending in a Document.Processed event.
package main

import (
	"context"
	"log"
	"net/url"

	"github.com/lakeshore-insurance/claims-backend/internal/analysis"
	"github.com/lakeshore-insurance/claims-backend/internal/awsutil"
	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/config"
	"github.com/lakeshore-insurance/claims-backend/internal/docpipeline"
	"github.com/lakeshore-insurance/claims-backend/internal/logging"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"go.uber.org/zap"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env      config.Env
	pipeline *docpipeline.Pipeline
	log      *zap.Logger
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
	rek := rekognition.NewFromConfig(cfg)
	logger := logging.New("docprocessor", env.LogLevel)

	app := &App{
		env: env,
		log: logger,
		pipeline: &docpipeline.Pipeline{
			Meta:       &s3io.MetaReader{Client: s3c},
			Classifier: &analysis.Classifier{Client: rek},
			Identity:   &analysis.IdentityExtractor{Client: textract.NewFromConfig(cfg)},
			Vehicle:    &analysis.VehicleAnalyzer{Client: rek, ModelARN: env.VehicleModelARN},
			Bus:        &bus.EventBridge{Client: eventbridge.NewFromConfig(cfg), BusName: env.BusName},
			Log:        logger,
		},
	}
	lambda.Start(app.handler)
}

// handler runs the pipeline once per uploaded object. A failed record is
// logged and does not block the others.
func (a *App) handler(ctx context.Context, ev awsevents.S3Event) (any, error) {
	for _, rec := range ev.Records {
		key, _ := url.QueryUnescape(rec.S3.Object.Key)
		runCtx, cancel := context.WithTimeout(ctx, a.env.PipelineTimeout)
		err := a.pipeline.Run(runCtx, rec.S3.Bucket.Name, key)
		cancel()
		if err != nil {
			a.log.Error("pipeline run failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil, nil
}
