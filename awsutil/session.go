package awsutil

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// Config selects the region and, for local use, a shared-config profile.
type Config struct {
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
	Endpoint string `yaml:"endpoint"`
}

// CreateSession builds a session from the environment, honouring the shared
// config files so the CLI can run with a named profile.
func CreateSession(cfg Config) (*session.Session, error) {
	awsCfg := aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	return session.NewSessionWithOptions(session.Options{
		Config:            awsCfg,
		Profile:           cfg.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
}
