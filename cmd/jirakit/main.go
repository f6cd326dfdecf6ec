// Package main provides the jirakit command line interface
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jirakit/jirakit/pkg/client"
	"github.com/jirakit/jirakit/pkg/config"
	"github.com/jirakit/jirakit/pkg/errors"
	"github.com/jirakit/jirakit/pkg/interfaces"
	"github.com/jirakit/jirakit/pkg/logger"
	"github.com/jirakit/jirakit/pkg/metrics"
)

// Version information (set by build process)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Command line flags
var (
	configFile  = flag.String("config", "", "Path to configuration file")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	jsonOutput  = flag.Bool("json", false, "Emit raw JSON instead of tables")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("jirakit %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, flag.Args()); err != nil {
		if jiraErr := errors.GetJiraError(err); jiraErr != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", jiraErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := initializeLogger(cfg)

	command, rest := args[0], args[1:]

	// config management works without credentials
	if command == "config" {
		return runConfig(cfg, rest)
	}

	if err := cfg.Validate(); err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}

	var sink interfaces.Metrics = metrics.NewNoOpMetrics()
	var inMemory *metrics.InMemoryMetrics
	if cfg.MetricsEnabled {
		inMemory = metrics.NewInMemoryMetrics()
		sink = inMemory
	}

	c, err := client.New(cfg, log, sink)
	if err != nil {
		return err
	}

	app := &app{client: c, cfg: cfg, logger: log, json: *jsonOutput}
	err = app.dispatch(ctx, command, rest)

	if inMemory != nil {
		for _, line := range inMemory.Snapshot() {
			log.Debug("metric", map[string]interface{}{"value": line})
		}
	}
	return err
}

func loadConfig() (*config.Config, error) {
	cfg := config.New()
	if *configFile != "" {
		if err := cfg.LoadFile(*configFile); err != nil {
			return nil, err
		}
	} else if path := defaultConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.LoadFile(path); err != nil {
				return nil, err
			}
		}
	}
	cfg.LoadEnv()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	return cfg, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.jirakit/config.yaml"
}

func initializeLogger(cfg *config.Config) interfaces.Logger {
	return logger.NewConsoleLogger(cfg.LogLevel)
}

func printUsage() {
	fmt.Println(`jirakit - Jira issue management from the command line

Usage:
  jirakit [flags] <command> [args]

Commands:
  me                                    Show the authenticated user
  search <jql>                          Search issues with JQL
  issue get <key>                       Show an issue
  issue create                          Create an issue
  issue update <key>                    Update issue fields
  issue delete <key>                    Delete an issue
  issue assign <key> <account-id>       Assign an issue
  issue transitions <key>               List available transitions
  issue transition <key> <name>         Move an issue through a transition
  issue subtask <parent-key>            Create a subtask
  comment add <key>                     Add a comment
  comment list <key>                    List comments
  comment update <key> <id>             Update a comment
  comment delete <key> <id>             Delete a comment
  worklog add <key>                     Log time on an issue
  worklog list <key>                    List worklog entries
  worklog update <key> <id>             Update a worklog entry
  worklog delete <key> <id>             Delete a worklog entry
  watcher list <key>                    List watchers
  watcher add <key> <account-id>        Watch an issue
  watcher remove <key> <account-id>     Unwatch an issue
  attach upload <key> <file>            Upload an attachment
  attach list <key>                     List attachments
  attach download <id> <dest>           Download an attachment
  attach delete <id>                    Delete an attachment
  user search <query>                   Search users
  project list                          List projects
  project get <key>                     Show a project
  bulk transition <name> <key>...       Transition many issues
  bulk assign <account-id> <key>...     Assign many issues
  bulk comment <body> <key>...          Comment on many issues
  bulk watch <account-id> <key>...      Watch many issues
  bulk unwatch <account-id> <key>...    Unwatch many issues
  config show                           Show the active configuration
  config init                           Write a starter config file

Flags:
  -config <path>    Configuration file
  -log-level <lvl>  Log level (debug, info, warn, error)
  -json             Emit raw JSON instead of tables
  -version          Show version information

Environment:
  JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN, JIRA_AUTH_MODE`)
}
