package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tauria/tauria-tsgen/analyzer"
	"github.com/tauria/tauria-tsgen/analyzer/models"
	"github.com/tauria/tauria-tsgen/constants/lipgloss"
	"github.com/tauria/tauria-tsgen/generator"
	"github.com/tauria/tauria-tsgen/render"
	"github.com/tauria/tauria-tsgen/scanner"
	"github.com/tauria/tauria-tsgen/utils"
	"github.com/tauria/tauria-tsgen/writer"
)

// generateCmd: tauria-tsgen generate
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Analyze the backend source tree and generate the TypeScript client.",
	Long: `The 'generate' subcommand scans the configured Rust source tree, analyzes its
commands, data types and broadcast events, and writes the generated TypeScript
artifacts to the output directory. With --dry-run the generated code is
printed to the terminal instead of being written.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			os.Exit(1)
		}
		os.Exit(handleGenerateCommand(rootDependencies))
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func handleGenerateCommand(rootDependencies *RootDependencies) int {
	cfg := rootDependencies.Config

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)

	inputPath := cfg.InputPath
	if !filepath.IsAbs(inputPath) {
		inputPath = filepath.Join(rootDependencies.Cwd, inputPath)
	}
	outputPath := cfg.OutputPath
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(rootDependencies.Cwd, outputPath)
	}

	spinnerScan, _ := spinner.Start("Scanning backend sources...")
	files, err := scanner.NewRustFileProvider().Scan(inputPath)
	spinnerScan.Stop()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return 1
	}
	if len(files) == 0 {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("No Rust sources found under %s", inputPath)))
	}

	var opts []analyzer.Option
	if cfg.Workers > 0 {
		opts = append(opts, analyzer.WithWorkers(cfg.Workers))
	}
	if cfg.EnableCache {
		cache, err := analyzer.NewCacheManager("")
		if err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Parse cache unavailable: %v", err)))
		} else {
			opts = append(opts, analyzer.WithCache(cache))
		}
	}

	spinnerAnalyze, _ := spinner.Start("Analyzing commands, types and events...")
	model, err := analyzer.NewBridgeAnalyzer(opts...).Analyze(files)
	spinnerAnalyze.Stop()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return 1
	}

	renderer, err := render.NewTemplateRenderer()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return 1
	}

	spinnerRender, _ := spinner.Start("Rendering TypeScript artifacts...")
	artifacts, err := generator.NewGenerator(renderer).Generate(model, generator.Options{MockAPI: cfg.MockAPI})
	spinnerRender.Stop()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return 1
	}

	printDiagnostics(model.Report)

	if cfg.DryRun {
		for _, a := range artifacts {
			fmt.Println(lipgloss.Info.Render("── " + a.RelPath))
			utils.PrintHighlighted(a.Content, "typescript", cfg.Theme)
			fmt.Println()
		}
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ Dry run: %d files rendered, nothing written.", len(artifacts))))
	} else {
		w := writer.NewStagedWriter(outputPath)
		for _, a := range artifacts {
			w.Stage(a.RelPath, a.Content)
		}
		if err := w.Commit(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			return 1
		}
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ Generated %d files under %s", len(artifacts), outputPath)))
	}

	if model.Report.HasErrors() {
		return 1
	}
	return 0
}

// printDiagnostics prints the analysis report, errors first.
func printDiagnostics(report *models.Report) {
	for _, d := range report.Diagnostics() {
		switch d.Severity {
		case models.SeverityError:
			fmt.Println(lipgloss.Red.Render(d.String()))
		default:
			fmt.Println(lipgloss.Yellow.Render(d.String()))
		}
	}
}
