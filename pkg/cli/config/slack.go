package config

import "github.com/urfave/cli/v3"

// Slack holds chat platform configuration
type Slack struct {
	BotToken        string
	SigningSecret   string
	ChannelCritical string
	ChannelReleases string
	ChannelTeam     string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token",
			Required:    true,
			Destination: &c.BotToken,
			Sources:     cli.EnvVars("RANCHERBOT_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack request signing secret",
			Required:    true,
			Destination: &c.SigningSecret,
			Sources:     cli.EnvVars("RANCHERBOT_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-critical",
			Usage:       "Channel for critical release notifications",
			Value:       "#rancher-critical",
			Destination: &c.ChannelCritical,
			Sources:     cli.EnvVars("RANCHERBOT_SLACK_CHANNEL_CRITICAL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-releases",
			Usage:       "Channel for release notifications",
			Value:       "#rancher-releases",
			Destination: &c.ChannelReleases,
			Sources:     cli.EnvVars("RANCHERBOT_SLACK_CHANNEL_RELEASES"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-team",
			Usage:       "Channel for operational error alerts",
			Value:       "#rancher-team",
			Destination: &c.ChannelTeam,
			Sources:     cli.EnvVars("RANCHERBOT_SLACK_CHANNEL_TEAM"),
		},
	}
}
