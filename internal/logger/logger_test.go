package logger

import (
	"strings"
	"testing"
)

// TestNewDevelopment tests development logger creation
func TestNewDevelopment(t *testing.T) {
	logger, err := NewDevelopment()
	if err != nil {
		t.Fatalf("NewDevelopment() error = %v", err)
	}

	if logger == nil {
		t.Fatal("NewDevelopment() returned nil logger")
	}

	// Logger should be usable
	logger.Info("test message")

	// Sync should not error
	if err := logger.Sync(); err != nil {
		// Ignore stdout sync errors on some platforms
		if !strings.Contains(err.Error(), "sync") {
			t.Errorf("Sync() error = %v", err)
		}
	}
}

// TestNewProduction tests production logger creation
func TestNewProduction(t *testing.T) {
	logger, err := NewProduction()
	if err != nil {
		t.Fatalf("NewProduction() error = %v", err)
	}

	if logger == nil {
		t.Fatal("NewProduction() returned nil logger")
	}

	logger.Info("test message")
}

// TestNewWithConfig tests logger creation with custom config
func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid development config",
			config: &Config{
				Level:       "debug",
				Development: true,
				Encoding:    "console",
			},
			wantErr: false,
		},
		{
			name: "valid production config",
			config: &Config{
				Level:    "info",
				Encoding: "json",
			},
			wantErr: false,
		},
		{
			name:    "defaults applied",
			config:  &Config{},
			wantErr: false,
		},
		{
			name: "invalid level",
			config: &Config{
				Level: "verbose",
			},
			wantErr: true,
		},
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewWithConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWithConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("NewWithConfig() returned nil logger")
			}
		})
	}
}

// TestWithComponent tests that component loggers are derived without error
func TestWithComponent(t *testing.T) {
	base, err := NewWithConfig(&Config{Level: "debug", Encoding: "json"})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}

	child := WithComponent(base, "search")
	if child == nil {
		t.Fatal("WithComponent() returned nil logger")
	}
	child.Debug("component logger usable")
}
