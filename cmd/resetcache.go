package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tauria/tauria-tsgen/analyzer"
	"github.com/tauria/tauria-tsgen/constants/lipgloss"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Remove the on-disk parse cache",
	Long: `The 'reset-cache' command removes every entry of the parse cache used when
caching is enabled. The cache is keyed by file content, so this is never
required for correctness; use it to reclaim disk space or after upgrading.`,
	Run: func(cmd *cobra.Command, args []string) {
		cache, err := analyzer.NewCacheManager("")
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			os.Exit(1)
		}
		if err := cache.Clear(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			os.Exit(1)
		}
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ Parse cache cleared (%s)", cache.Dir())))
	},
}

func init() {
	rootCmd.AddCommand(resetCacheCmd)
}
