// Package config provides configuration loading, defaults, and
// validation for querywatch.
package config

// DefaultConfigDir is the default location for querywatch configuration.
const DefaultConfigDir = "~/.config/querywatch"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultSensitiveFields is the stock vocabulary for the source
// exposure check. Field names are matched in decapitalized form.
var DefaultSensitiveFields = []string{
	"password",
	"passwordHash",
	"secret",
	"apiKey",
	"token",
	"ssn",
	"creditCard",
}

// DefaultLogging holds the default logging settings.
var DefaultLogging = Logging{
	Level:  "info",
	Format: "text",
	Output: "stderr",
}

// DefaultDiagnostic holds the default plan-capability settings. The
// capability stays disabled until a DSN is configured.
var DefaultDiagnostic = Diagnostic{
	Driver:    "mysql",
	TimeoutMs: 2000,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 100,
}
