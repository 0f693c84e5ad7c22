package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paynl",
	Short: "Pay. payment provider bridge",
	Long:  "A payment provider bridge between a commerce host and the Pay. gateway: lifecycle calls, delayed webhook dispatch and checkout options.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
