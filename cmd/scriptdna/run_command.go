package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scriptdna/internal/config"
	"scriptdna/internal/export"
	"scriptdna/internal/logging"
	"scriptdna/internal/notifications"
	"scriptdna/internal/pipeline"
	"scriptdna/internal/services"
	"scriptdna/internal/stages"
	"scriptdna/internal/textutil"
	"scriptdna/internal/transcript"
)

type runOptions struct {
	strategy     int
	words        int
	parts        int
	instructions string
	outDir       string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <transcript.srt>",
		Short: "Run the full pipeline and export the script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			script, err := opts.scriptConfig(cfg)
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg)
			err = runPipeline(cmd.Context(), cmd.OutOrStdout(), cfg, notifier, args[0], script, opts)
			if err != nil && !errors.Is(err, context.Canceled) {
				if notifyErr := notifier.NotifyStageFailed(context.WithoutCancel(cmd.Context()), failedStage(err), err); notifyErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "notification failed: %v\n", notifyErr)
				}
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.strategy, "strategy", "s", 1, "Strategy to write, by position in the proposed list")
	cmd.Flags().IntVar(&opts.words, "words", 0, "Target word count (defaults to script.target_word_count)")
	cmd.Flags().IntVar(&opts.parts, "parts", 0, "Number of script parts (defaults to script.parts)")
	cmd.Flags().StringVar(&opts.instructions, "instructions", "", "Extra instructions for the writer")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Export directory (defaults to paths.export_dir)")
	return cmd
}

func (o runOptions) scriptConfig(cfg *config.Config) (stages.ScriptConfig, error) {
	script := stages.ScriptConfig{
		TargetWordCount: cfg.Script.TargetWordCount,
		Parts:           cfg.Script.Parts,
		Instructions:    cfg.Script.Instructions,
	}
	if o.words > 0 {
		script.TargetWordCount = o.words
	}
	if o.parts > 0 {
		script.Parts = o.parts
	}
	if strings.TrimSpace(o.instructions) != "" {
		script.Instructions = strings.TrimSpace(o.instructions)
	}
	if err := script.Validate(); err != nil {
		return stages.ScriptConfig{}, err
	}
	return script, nil
}

func runPipeline(ctx context.Context, out io.Writer, cfg *config.Config, notifier notifications.Service, path string, script stages.ScriptConfig, opts runOptions) error {
	logger, err := commandLogger(cfg)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	sessionLog, err := logging.OpenSessionLog(logger, cfg.Paths.LogDir, sessionID)
	if err != nil {
		return err
	}
	defer sessionLog.Close()
	logging.PruneSessionLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, sessionLog.Path)

	backend, err := openProvider(ctx, cfg, sessionLog.Logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	exportDir := cfg.Paths.ExportDir
	if strings.TrimSpace(opts.outDir) != "" {
		if exportDir, err = config.ExpandPath(opts.outDir); err != nil {
			return fmt.Errorf("resolve export dir: %w", err)
		}
	}
	writer, err := export.NewWriter(exportDir, sessionLog.Logger)
	if err != nil {
		return err
	}

	session := pipeline.NewSessionWithID(sessionID, backend.generator, sessionLog.Logger)
	colorize := shouldColorize(out)

	data, err := session.IngestFile(path)
	if err != nil {
		return err
	}
	step(out, "Transcript", fmt.Sprintf("%s, %d words, %s", data.FileName, data.WordCount, formatSeconds(data.Duration)), colorize)

	analysis, err := session.Analyze(ctx)
	if err != nil {
		return err
	}
	step(out, "Analysis", analysis.HookType, colorize)
	printAnalysis(out, analysis)

	dna, err := session.ExtractDNA(ctx)
	if err != nil {
		return err
	}
	step(out, "Persona", dna.PersonaName, colorize)
	if dna.StyleSummary != "" {
		fmt.Fprintf(out, "%s%s\n\n", statusIndent, dna.StyleSummary)
	}

	strategies, err := session.GenerateStrategies(ctx)
	if err != nil {
		return err
	}
	if len(strategies) == 0 {
		return services.Wrap(services.ErrNoContent, stages.StageStrategies, "select strategy", "no strategies were generated", nil)
	}
	printStrategies(out, strategies)
	if opts.strategy < 1 || opts.strategy > len(strategies) {
		return fmt.Errorf("--strategy must be between 1 and %d", len(strategies))
	}
	chosen, err := session.SelectStrategy(strategies[opts.strategy-1].ID)
	if err != nil {
		return err
	}
	step(out, "Strategy", chosen.Title, colorize)

	if err := session.Configure(script); err != nil {
		return err
	}
	for !session.Complete() {
		part, err := session.GenerateNextPart(ctx)
		if err != nil {
			return err
		}
		words := transcript.CountWords(part.Join(" "))
		step(out, fmt.Sprintf("Part %d/%d", part.PartNumber, script.Parts), fmt.Sprintf("%d words", words), colorize)
	}

	snap := session.Snapshot()
	paths, err := writer.WriteScript(snap.Topic(), snap.Parts)
	if err != nil {
		return err
	}
	logExported(sessionLog.Logger, paths)
	if err := notifier.NotifyScriptExported(ctx, snap.Topic(), len(snap.Parts), paths[0]); err != nil {
		logging.WarnWithContext(sessionLog.Logger, "export notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Exported", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, p := range paths {
		fmt.Fprintf(out, "%s%s\n", statusIndent, p)
	}
	return nil
}

// failedStage names the pipeline stage behind err, or "run" when none is known.
func failedStage(err error) string {
	var stageErr *stages.StageError
	if errors.As(err, &stageErr) && stageErr.Stage != "" {
		return stageErr.Stage
	}
	return "run"
}

func step(out io.Writer, label, message string, colorize bool) {
	fmt.Fprintln(out, renderStatusLine(label, statusOK, message, colorize))
}

func printAnalysis(out io.Writer, analysis stages.Analysis) {
	if len(analysis.KeyThemes) == 0 {
		return
	}
	rows := make([][]string, 0, len(analysis.KeyThemes))
	for i, theme := range analysis.KeyThemes {
		rows = append(rows, []string{strconv.Itoa(i + 1), textutil.TitleCase(theme)})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Theme"}, rows, []columnAlignment{alignRight, alignLeft}))
}

func printStrategies(out io.Writer, strategies []stages.Strategy) {
	rows := make([][]string, 0, len(strategies))
	for i, s := range strategies {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Title, preview(s.Concept, segmentPreviewChars)})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Title", "Concept"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
}

func logExported(logger *slog.Logger, paths []string) {
	logger.Info("script exported",
		logging.String(logging.FieldEventType, "script_exported"),
		logging.Int("files", len(paths)),
		logging.String("path", paths[0]),
	)
}
