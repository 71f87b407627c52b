// robotorder places every order of the RobotSpareBin orders feed through the order
// form and archives the receipts.
//
// Usage:
//
//	robotorder run [--config robotorder.yaml] [--output dir] [--headed] [--verbosity level]
//	robotorder version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "robotorder",
	Short: "Place robot orders from a CSV feed and archive the receipts",
	Long: "robotorder downloads the orders feed, fills the order form once per row with retries,\n" +
		"saves a receipt PDF with the robot preview embedded, and zips all receipts.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
