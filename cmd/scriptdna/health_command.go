package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"scriptdna/internal/config"
	"scriptdna/internal/notifications"
)

const healthTimeout = 60 * time.Second

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var testNotify bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the configured model provider answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Provider", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Provider", statusInfo, cfg.LLM.Provider, colorize))

			checkCtx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()

			providerErr := checkProvider(checkCtx, out, cfg, colorize)
			notifyErr := checkNotifications(checkCtx, out, cfg, testNotify, colorize)
			return errors.Join(providerErr, notifyErr)
		},
	}

	cmd.Flags().BoolVar(&testNotify, "notify", false, "Send a test notification")
	return cmd
}

func checkProvider(ctx context.Context, out io.Writer, cfg *config.Config, colorize bool) error {
	logger, err := commandLogger(cfg)
	if err != nil {
		return err
	}
	backend, err := openProvider(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Credentials", statusError, err.Error(), colorize))
		return errors.New("provider not configured")
	}
	defer backend.Close()
	fmt.Fprintln(out, renderStatusLine("Credentials", statusOK, "present", colorize))

	start := time.Now()
	if err := backend.health(ctx); err != nil {
		fmt.Fprintln(out, renderStatusLine("Completion", statusError, err.Error(), colorize))
		return errors.New("provider health check failed")
	}
	fmt.Fprintln(out, renderStatusLine("Completion", statusOK, time.Since(start).Round(time.Millisecond).String(), colorize))
	return nil
}

func checkNotifications(ctx context.Context, out io.Writer, cfg *config.Config, send, colorize bool) error {
	svc := notifications.NewService(cfg)
	if notifications.IsDisabled(svc) {
		fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo, "disabled", colorize))
		return nil
	}
	if !send {
		fmt.Fprintln(out, renderStatusLine("Notifications", statusOK, cfg.Notifications.NtfyTopic, colorize))
		return nil
	}
	if err := svc.TestNotification(ctx); err != nil {
		fmt.Fprintln(out, renderStatusLine("Notifications", statusError, err.Error(), colorize))
		return errors.New("test notification failed")
	}
	fmt.Fprintln(out, renderStatusLine("Notifications", statusOK, "test sent", colorize))
	return nil
}
