package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/seta/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [folder]",
	Short: "Create a .seta.yml for a documentation folder with an interactive wizard",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := folderArg(args, 0)
		if err != nil {
			return err
		}
		_, err = config.RunWizard(folder)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
