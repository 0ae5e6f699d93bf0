package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"wisefido-sleep-diary/internal/config"
	"wisefido-sleep-diary/internal/logger"
	"wisefido-sleep-diary/internal/models"
	"wisefido-sleep-diary/internal/report"
	"wisefido-sleep-diary/internal/service"
	"wisefido-sleep-diary/internal/workbook"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "wisefido-sleep-diary"

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Sleep diary normalizer and metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ./sleep-diary.yaml if present)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override: debug|info|warn|error")

	root.AddCommand(newAnalyzeCmd(&flags))
	root.AddCommand(newRespondentsCmd(&flags))
	root.AddCommand(newVersionCmd())
	return root
}

// app 一次命令执行所需的依赖
type app struct {
	logger  *zap.Logger
	service service.AnalysisService
}

func loadApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	log, err := logger.NewLogger(level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, err
	}
	svc, err := service.NewAnalysisServiceFromConfig(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &app{logger: log, service: svc}, nil
}

func readUpload(path, sheet string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	return workbook.Read(f, sheet)
}

func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	var respondent, out, sheet string

	cmd := &cobra.Command{
		Use:   "analyze <file.xlsx>",
		Short: "Normalize a diary export, compute nightly metrics and write the results workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			ds, err := readUpload(args[0], sheet)
			if err != nil {
				return err
			}
			resp, err := a.service.Analyze(contextOf(cmd), service.AnalyzeRequest{
				Dataset:    ds,
				Respondent: respondent,
			})
			if err != nil {
				return err
			}

			data, err := workbook.WriteResults(resp.Results, resp.Summary, resp.Respondent)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(filepath.Dir(args[0]), workbook.ResultFileName(resp.Respondent))
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write results: %w", err)
			}
			a.logger.Info("results written", zap.String("run_id", resp.RunID), zap.String("path", out))

			w := cmd.OutOrStdout()
			if err := report.WriteSummary(w, resp.Respondent, resp.Summary); err != nil {
				return err
			}
			writeMerges(w, resp.MergeMap)
			if resp.Dropped > 0 {
				_, _ = fmt.Fprintf(w, "%d righe senza nome escluse\n", resp.Dropped)
			}
			_, _ = fmt.Fprintf(w, "Risultati: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&respondent, "respondent", "", "analyze a single respondent (default: all)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "results workbook path (default: next to the input)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (default: first sheet)")
	return cmd
}

func writeMerges(w io.Writer, merge map[string]string) {
	if len(merge) == 0 {
		return
	}
	sources := make([]string, 0, len(merge))
	for src := range merge {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var buf bytes.Buffer
	buf.WriteString("Nomi uniti:\n")
	for _, src := range sources {
		fmt.Fprintf(&buf, "  %s -> %s\n", src, merge[src])
	}
	_, _ = w.Write(buf.Bytes())
}

func newRespondentsCmd(flags *globalFlags) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "respondents <file.xlsx>",
		Short: "List the respondents found in a diary export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			ds, err := readUpload(args[0], sheet)
			if err != nil {
				return err
			}
			names, err := a.service.Respondents(contextOf(cmd), ds)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nessun cliente")
				return nil
			}
			for _, n := range names {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (default: first sheet)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, version)
		},
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
