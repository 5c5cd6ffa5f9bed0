package main

import (
	"os"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: constants.AppName,
	Long: `storefront sits between the shop front end and the e-commerce REST API.

It serves product listings with their pagination plan, keeps the listing
query state canonical, and holds shopper sessions server-side.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pagesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
