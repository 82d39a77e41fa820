// Package main merges cleared identity-document fields into the customer's
// document record after a Fraud.Not.Detected verdict.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/lakeshore-insurance/claims-backend/internal/awsutil"
	"github.com/lakeshore-insurance/claims-backend/internal/config"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/logging"
	"github.com/lakeshore-insurance/claims-backend/internal/models"
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
		log:  logging.New("customerupdate", env.LogLevel),
	}
	lambda.Start(app.handler)
}

// handler overwrites the customer's DRIVERS_LICENSE document record with the
// verdict's extracted field map. Reprocessing replaces it wholesale; no
// history is kept.
func (a *App) handler(ctx context.Context, ev awsevents.CloudWatchEvent) error {
	var verdict events.FraudNotDetected
	if err := json.Unmarshal(ev.Detail, &verdict); err != nil {
		return fmt.Errorf("bad %s detail: %w", ev.DetailType, err)
	}
	if verdict.DocumentType != models.DocTypeDriversLicense ||
		verdict.AnalyzedFieldAndValues == nil || len(verdict.AnalyzedFieldAndValues.Fields) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.env.ReactorTimeout)
	defer cancel()

	rec := models.DocumentRecord{
		PK: store.CustomerPK(verdict.CustomerID), SK: store.DocumentSK(models.DocTypeDriversLicense),
		CustomerID:   verdict.CustomerID,
		DocumentType: models.DocTypeDriversLicense,
		Fields:       verdict.AnalyzedFieldAndValues.Fields,
		UpdatedAt:    store.NowISO(),
	}
	if err := a.repo.PutDocumentRecord(ctx, rec); err != nil {
		return fmt.Errorf("store document record: %w", err)
	}
	a.log.Info("license fields recorded",
		zap.String("customerId", verdict.CustomerID),
		zap.Int("fields", len(rec.Fields)))
	return nil
}
