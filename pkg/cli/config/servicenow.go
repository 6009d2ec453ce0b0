package config

import "github.com/urfave/cli/v3"

// ServiceNow holds ServiceNow escalation configuration. Escalation is
// disabled when the instance name is empty.
type ServiceNow struct {
	Instance string
	Username string
	Password string
}

// Flags returns CLI flags for ServiceNow configuration
func (c *ServiceNow) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "servicenow-instance",
			Usage:       "ServiceNow instance name (empty disables ServiceNow escalation)",
			Destination: &c.Instance,
			Sources:     cli.EnvVars("RANCHERBOT_SERVICENOW_INSTANCE"),
		},
		&cli.StringFlag{
			Name:        "servicenow-username",
			Usage:       "ServiceNow API username",
			Destination: &c.Username,
			Sources:     cli.EnvVars("RANCHERBOT_SERVICENOW_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "servicenow-password",
			Usage:       "ServiceNow API password",
			Destination: &c.Password,
			Sources:     cli.EnvVars("RANCHERBOT_SERVICENOW_PASSWORD"),
		},
	}
}
