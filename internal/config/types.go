package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Admin         AdminConfig
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	NextEventDate string
}

// AdminConfig holds the credential gating destructive operations.
type AdminConfig struct {
	Password string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
