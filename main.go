package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer/record"
	"github.com/ByLCY/quire/report"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	valueStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode 按错误类别区分退出码，便于脚本判断。
func exitCode(err error) int {
	switch {
	case errs.IsValidation(err):
		return 2
	case errs.IsResource(err):
		return 3
	case errs.IsBackend(err), errs.IsDeterminism(err):
		return 4
	default:
		return 1
	}
}

func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "quire",
		Short:        "quire 把报告脚本与结果数据排版为 PDF 文档或幻灯片",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	root.AddCommand(newBuildCmd(&verbose), newFontsCmd())
	return root
}

type buildFlags struct {
	theme   string
	data    string
	out     string
	debug   string
	backend string
}

func newBuildCmd(verbose *bool) *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build <script>",
		Short: "构建报告脚本",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), args[0], f, newLogger(*verbose))
		},
	}
	cmd.Flags().StringVarP(&f.theme, "theme", "t", "", "主题文件（.yaml/.yml/.toml）")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "结果数据文件（.json/.yaml）")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "输出路径，默认与脚本同名的 .pdf")
	cmd.Flags().StringVar(&f.debug, "debug", "", "布局调试 JSON 输出路径")
	cmd.Flags().StringVar(&f.backend, "backend", "", "绘图后端：canvas、fpdf 或 record")
	return cmd
}

func runBuild(ctx context.Context, script string, f buildFlags, logger *log.Logger) error {
	theme, err := config.LoadOrDefault(f.theme)
	if err != nil {
		return err
	}
	opts := layout.BuildOptions{Theme: theme, Logger: logger, Context: ctx}
	switch f.backend {
	case "":
	case "record":
		opts.Backend = record.Factory
	default:
		theme.Backend = f.backend
	}
	if f.data != "" {
		if opts.Data, err = binding.LoadFile(f.data); err != nil {
			return err
		}
	}
	out := f.out
	if out == "" {
		ext := ".pdf"
		if f.backend == "record" {
			ext = ".json"
		}
		out = strings.TrimSuffix(script, filepath.Ext(script)) + ext
	}

	logger.Debug("开始构建", "script", script, "theme", f.theme, "backend", theme.Backend)
	res, err := layout.BuildFile(script, out, opts)
	if err != nil {
		return err
	}
	if f.debug != "" {
		if err := report.WriteDebugJSON(res, f.debug); err != nil {
			return errs.Wrap(errs.ErrCodeResource, err, "写出调试 JSON 失败")
		}
	}
	fmt.Println(summary(out, res))
	return nil
}

func summary(out string, res *report.Result) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
	}
	lines := []string{
		okStyle.Render("✓ 构建完成"),
		row("输出", out),
		row("页数", fmt.Sprint(res.Pages)),
		row("目录项", fmt.Sprint(len(res.TOC))),
	}
	for _, w := range res.Warnings {
		lines = append(lines, warnStyle.Render("! "+w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func newFontsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "列出内置字体",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range fonts.NewRegistry().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
