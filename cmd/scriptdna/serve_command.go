package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriptdna/internal/api"
	"scriptdna/internal/export"
	"scriptdna/internal/notifications"
	"scriptdna/internal/stages"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var maxSessions int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := commandLogger(cfg)
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			backend, err := openProvider(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			writer, err := export.NewWriter(cfg.Paths.ExportDir, logger)
			if err != nil {
				return err
			}

			addr := cfg.API.Bind
			if strings.TrimSpace(bind) != "" {
				addr = strings.TrimSpace(bind)
			}
			server := api.NewServer(api.Options{
				Bind:      addr,
				Generator: backend.generator,
				Provider:  backend.name,
				Health:    backend.health,
				Exporter:  writer,
				Notifier:  notifications.NewService(cfg),
				DefaultScript: stages.ScriptConfig{
					TargetWordCount: cfg.Script.TargetWordCount,
					Parts:           cfg.Script.Parts,
					Instructions:    cfg.Script.Instructions,
				},
				MaxSessions: maxSessions,
				Logger:      logger,
			})
			if err := server.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s (provider %s)\n", server.Addr(), backend.name)

			// Start stops the server once runCtx is done.
			<-runCtx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to api.bind)")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "Maximum concurrent sessions (0 uses the built-in limit)")
	return cmd
}
