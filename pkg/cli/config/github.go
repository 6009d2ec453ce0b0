package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// GitHub holds upstream release feed configuration
type GitHub struct {
	Owner         string
	Repo          string
	Token         string
	WebhookSecret string
	CheckInterval time.Duration
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-owner",
			Usage:       "Owner of the watched repository",
			Value:       "rancher",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("RANCHERBOT_GITHUB_OWNER"),
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Watched repository name",
			Value:       "rancher",
			Destination: &c.Repo,
			Sources:     cli.EnvVars("RANCHERBOT_GITHUB_REPO"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub API token (optional for public feeds)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("RANCHERBOT_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("RANCHERBOT_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.DurationFlag{
			Name:        "github-check-interval",
			Usage:       "Interval between release feed polls",
			Value:       6 * time.Hour,
			Destination: &c.CheckInterval,
			Sources:     cli.EnvVars("RANCHERBOT_GITHUB_CHECK_INTERVAL"),
		},
	}
}
