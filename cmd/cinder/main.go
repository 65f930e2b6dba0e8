// Package main is the entrypoint for the cinder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinderops/cinder/pkg/config"
	"github.com/cinderops/cinder/pkg/events"
	"github.com/cinderops/cinder/pkg/inventory"
	"github.com/cinderops/cinder/pkg/logging"
	"github.com/cinderops/cinder/pkg/parser"
	"github.com/cinderops/cinder/pkg/playbook"
	"github.com/cinderops/cinder/pkg/streamserver"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	inventoryFile string
	checkMode     bool
	limitHost     string
	listenAddr    string
	configFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cinder <playbook.yml>",
	Short:   "cinder runs declarative YAML playbooks against local or SSH hosts",
	Version: fmt.Sprintf("%s (%s)", version, commit),
	Args:    cobra.ExactArgs(1),
	RunE:    runPlaybook,
}

func init() {
	rootCmd.Flags().StringVarP(&inventoryFile, "inventory", "i", "", "static inventory file")
	rootCmd.Flags().BoolVar(&checkMode, "check", false, "dry run: substitute every command with true")
	rootCmd.Flags().StringVar(&limitHost, "limit", "", "only run plays whose hosts equal this host (localhost plays always run)")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "address to serve a live event websocket on, e.g. :8080")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "cinder config file")
}

func runPlaybook(cmd *cobra.Command, args []string) error {
	playbookPath := args[0]

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New()
	bus := events.New()
	logging.Subscribe(logger, bus)

	if listenAddr != "" {
		srv := streamserver.New(logger)
		srv.Subscribe(bus)
		stop := make(chan struct{})
		defer close(stop)
		srv.Start(stop)
		go func() {
			logger.Info("serving live event stream", "addr", listenAddr)
			if err := serveStream(listenAddr, srv); err != nil {
				logger.Error("event stream server exited", "error", err)
			}
		}()
	}

	data, err := os.ReadFile(playbookPath)
	if err != nil {
		return fmt.Errorf("reading playbook: %w", err)
	}

	pb, err := parser.ParsePlaybook(data)
	if err != nil {
		return fmt.Errorf("parsing playbook: %w", err)
	}

	inv, err := inventory.Load(inventoryFile)
	if err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}

	dry := checkMode || cfg.CheckDefault

	return playbook.Run(pb, playbook.Options{
		Basedir:   playbookBasedir(playbookPath),
		Inventory: inv,
		Limit:     limitHost,
		Dry:       dry,
		Bus:       bus,
	})
}
