package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tauria/tauria-tsgen/config"
	"github.com/tauria/tauria-tsgen/constants/lipgloss"
)

// RootDependencies holds everything the subcommands share.
type RootDependencies struct {
	Config *config.Config
	Cwd    string
}

var rootCmd = &cobra.Command{
	Use:   "tauria-tsgen",
	Short: "Generate typed TypeScript bindings for a Tauri backend.",
	Long: `tauria-tsgen analyzes the Rust source tree of a Tauri backend and generates
typed TypeScript client code: invoke wrappers for every command, interfaces
describing the callable surface, the shared data types, and handlers for the
events the backend broadcasts.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println(config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// handleRootCommand loads configuration for a subcommand run.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return nil
	}

	cfg := config.LoadConfigs(rootCmd, cwd)
	return &RootDependencies{Config: cfg, Cwd: cwd}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}
