package main

import (
	"github.com/spf13/cobra"

	"smallsh/internal/config"
	"smallsh/internal/shell"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "smallsh",
	Short: "A small interactive shell",
	Long: `smallsh is a minimal interactive shell: built-in exit, cd and status
commands, external command execution with < and > redirection, background
jobs with &, and a SIGTSTP-toggled foreground-only mode.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		session, err := shell.New(cfg)
		if err != nil {
			return err
		}
		return session.Run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
