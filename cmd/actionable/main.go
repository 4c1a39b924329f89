package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/voicebridge/actionable/common/environment"
	"github.com/voicebridge/actionable/common/version"
	"github.com/voicebridge/actionable/internal/skill/app"
	"github.com/voicebridge/actionable/internal/skill/config"
	"github.com/voicebridge/actionable/internal/skill/observability"
)

func main() {
	fmt.Printf("Actionable Notifications Skill\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	// Optional .env file for local development. Missing files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load(environment.StringOr("CONFIG_PATH", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Set HOME_ASSISTANT_URL or provide a config file via CONFIG_PATH\n")
		os.Exit(1)
	}

	observability.Setup(cfg.Log.Level, cfg.Log.Format)

	skill, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize skill backend: %v\n", err)
		os.Exit(1)
	}
	defer skill.Stop()

	if err := skill.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running skill backend: %v\n", err)
		os.Exit(1)
	}
}
