// ABOUTME: Entry point for the restlab user-directory service
// ABOUTME: Provides serve, init and health subcommands

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/crypto/bcrypt"

	"github.com/unilab/restlab/internal/api"
	"github.com/unilab/restlab/internal/auth"
	"github.com/unilab/restlab/internal/config"
	"github.com/unilab/restlab/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                _   _       _
 _ __ ___  ___| |_| | __ _| |__
| '__/ _ \/ __| __| |/ _' | '_ \
| | |  __/\__ \ |_| | (_| | |_) |
|_|  \___||___/\__|_|\__,_|_.__/
`

// getConfigPath returns the path to the restlab config file.
// Priority: RESTLAB_CONFIG env var > XDG_CONFIG_HOME/restlab/restlab.yaml > ~/.config/restlab/restlab.yaml
func getConfigPath() string {
	if envPath := os.Getenv("RESTLAB_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "restlab.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "restlab", "restlab.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: restlab <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the HTTP server")
		fmt.Println("  init     Create a starter config file")
		fmt.Println("  health   Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Token:    %s lifetime\n", cfg.Auth.TokenLifetime)
	fmt.Println()

	logger.Info("starting restlab",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"token_lifetime", cfg.Auth.TokenLifetime,
	)

	st := store.New()
	if cfg.Store.SeedDemo {
		st.SeedDemo()
		logger.Info("seeded demo users")
	}

	codec, err := auth.NewCodec([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}
	gate := auth.NewGate(codec, cfg.Auth.TokenLifetime, cfg.CredentialMap())

	server := api.New(cfg, st, gate, logger, version)
	return server.Run(ctx)
}

// runInit writes a starter config with a fresh signing secret and the
// demo/12345 credential pair. Refuses to overwrite an existing file.
func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	secretBytes := make([]byte, 48)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte("12345"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}

	content := fmt.Sprintf(`server:
  http_addr: "127.0.0.1:8080"

auth:
  jwt_secret: "%s"
  token_lifetime: "24h"
  users:
    - username: demo
      password_hash: "%s"

store:
  seed_demo: true

logging:
  level: info
  format: color
`, secret, string(hash))

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Config written to %s\n", configPath)
	fmt.Println("  Demo login: demo / 12345")
	return nil
}

// runHealth checks the /health endpoint of the configured server.
func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	url := "http://" + cfg.Server.HTTPAddr + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Server healthy: %s (version %s)\n", body["server_id"], body["version"])
	return nil
}
