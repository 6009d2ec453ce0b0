package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini holds Gemini LLM configuration
type Gemini struct {
	ProjectID   string
	Location    string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Flags returns CLI flags for Gemini configuration
func (c *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project-id",
			Usage:       "Google Cloud Project ID for Gemini",
			Required:    true,
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("RANCHERBOT_GEMINI_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI location/region",
			Value:       "us-central1",
			Destination: &c.Location,
			Sources:     cli.EnvVars("RANCHERBOT_GEMINI_LOCATION"),
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model to use",
			Value:       "gemini-2.5-flash",
			Destination: &c.Model,
			Sources:     cli.EnvVars("RANCHERBOT_GEMINI_MODEL"),
		},
		&cli.IntFlag{
			Name:        "gemini-max-tokens",
			Usage:       "Token ceiling for analysis completions",
			Value:       4000,
			Destination: &c.MaxTokens,
			Sources:     cli.EnvVars("RANCHERBOT_GEMINI_MAX_TOKENS"),
		},
		&cli.FloatFlag{
			Name:        "gemini-temperature",
			Usage:       "Sampling temperature for completions",
			Value:       0.7,
			Destination: &c.Temperature,
			Sources:     cli.EnvVars("RANCHERBOT_GEMINI_TEMPERATURE"),
		},
	}
}

// Configure creates the Gemini LLM client.
func (c *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	client, err := gemini.New(ctx, c.Location, c.ProjectID,
		gemini.WithModel(c.Model),
		gemini.WithTemperature(float32(c.Temperature)),
		gemini.WithMaxTokens(int32(c.MaxTokens)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return client, nil
}
