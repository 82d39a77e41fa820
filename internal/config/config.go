// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds the configuration values shared by the reactor Lambdas. Each
// Lambda reads only the fields it needs.
type Env struct {
	Region  string `env:"AWS_REGION" envDefault:"us-east-1"`
	Bucket  string `env:"S3_BUCKET,required"`
	Table   string `env:"DDB_TABLE,required"`
	BusName string `env:"EVENT_BUS_NAME,required"`

	PresignTTL time.Duration `env:"PRESIGN_TTL" envDefault:"300s"`

	// Wall-clock budgets per reactor invocation. The document pipeline gets
	// minutes because it waits on image analysis; everything else gets
	// seconds.
	ReactorTimeout  time.Duration `env:"REACTOR_TIMEOUT" envDefault:"30s"`
	PipelineTimeout time.Duration `env:"PIPELINE_TIMEOUT" envDefault:"3m"`

	// Rekognition custom-labels model used for vehicle color/damage analysis.
	VehicleModelARN string `env:"VEHICLE_MODEL_ARN"`

	DevBypassAuth bool   `env:"DEV_BYPASS_AUTH" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// MustLoad reads the environment and panics if required variables are
// missing. A .env file is honored for local runs; in Lambda there is none.
func MustLoad() Env {
	_ = godotenv.Load()
	var e Env
	if err := env.Parse(&e); err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	return e
}
