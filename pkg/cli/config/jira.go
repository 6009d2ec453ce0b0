package config

import "github.com/urfave/cli/v3"

// Jira holds Jira escalation configuration. Escalation is disabled
// when the base URL is empty.
type Jira struct {
	URL        string
	Email      string
	APIToken   string
	ProjectKey string
}

// Flags returns CLI flags for Jira configuration
func (c *Jira) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jira-url",
			Usage:       "Jira base URL (empty disables Jira escalation)",
			Destination: &c.URL,
			Sources:     cli.EnvVars("RANCHERBOT_JIRA_URL"),
		},
		&cli.StringFlag{
			Name:        "jira-email",
			Usage:       "Jira account email for API authentication",
			Destination: &c.Email,
			Sources:     cli.EnvVars("RANCHERBOT_JIRA_EMAIL"),
		},
		&cli.StringFlag{
			Name:        "jira-api-token",
			Usage:       "Jira API token",
			Destination: &c.APIToken,
			Sources:     cli.EnvVars("RANCHERBOT_JIRA_API_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "jira-project-key",
			Usage:       "Jira project key for created issues",
			Value:       "RANCHER",
			Destination: &c.ProjectKey,
			Sources:     cli.EnvVars("RANCHERBOT_JIRA_PROJECT_KEY"),
		},
	}
}
