// Package main is the worldforge command line: the console game, saved
// session tools and a stand-in engine peer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "worldforge",
	Short: "Shape a historical world one dilemma at a time",
	Long: `WorldForge deals tarot-style dilemma cards for a historical era. Each
choice shifts the world's traits and atmosphere, and every change is
pushed to a connected game engine.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(erasCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(peerCmd)
}
