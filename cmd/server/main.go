// Package main is the entry point for the rpg-party server and its test client
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-party/cmd/server/client"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "rpg-party",
	Short: "RPG Party gRPC Server",
	Long:  `RPG Party runs a tabletop table for one human and a party of AI companions led by an AI dungeon master.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
