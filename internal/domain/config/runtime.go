package config

import (
	"crypto/ecdsa"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// WorkDir is where generated projects are written
	WorkDir string

	// External collaborators
	Generator []string // scaffold generator command
	Installer []string // dependency installer command
	Runner    []string // prefix used to launch a TypeScript entrypoint

	// Port allocation
	PortBase    int
	PortCeiling int

	// Process supervision
	StartupTimeout time.Duration
	PollInterval   time.Duration
	StopGrace      time.Duration

	// Protocol clients
	RequestTimeout time.Duration
	ProbeAttempts  int
	ProbeDelay     time.Duration

	// PayerKey funds the paid x402 round trip; nil skips those checks
	PayerKey *ecdsa.PrivateKey

	// Execution settings
	Debug          bool
	NonInteractive bool
	Format         string // table, json or yaml
	ReportPath     string
	Timeout        time.Duration
}
