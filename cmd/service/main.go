package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal"
	"github.com/rosyfit/backend/internal/config"
	"github.com/rosyfit/backend/internal/logging"
	"github.com/rosyfit/backend/pkg"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "rosyfit-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	username := os.Getenv("ROSYFIT_USERNAME")
	passwordHash := os.Getenv("ROSYFIT_PASSWORD_HASH")
	if username == "" || passwordHash == "" {
		log.Fatalf("credentials not set. use ROSYFIT_USERNAME and ROSYFIT_PASSWORD_HASH")
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Errorf("gemini API key not set, use GEMINI_API_KEY env var to set it")
	}

	redisPassword := os.Getenv("ROSYFIT_REDIS_PASS")
	if redisPassword == "" {
		log.Errorf("redis password not set. use ROSYFIT_REDIS_PASS")
	}

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	// the check-in answers ledger needs its directory in place
	dirCreated, err := pkg.PathExists(cfg.CheckInDataRootPath, true)
	if err != nil {
		log.Fatalf("check check-in data root dir: %s", err)
	}
	if !dirCreated {
		log.Fatalf("check-in data root dir not created: %s", cfg.CheckInDataRootPath)
	}
	log.Printf("check-in data root dir: %s", cfg.CheckInDataRootPath)

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:         cfg,
			VersionInfo:    versionInfo,
			Username:       username,
			PasswordHash:   passwordHash,
			RedisPassword:  redisPassword,
			GeminiAPIKey:   geminiAPIKey,
			TracingEnabled: cfg.SentryEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return pkg.BytesToString(stdout), nil
}
