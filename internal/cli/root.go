package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the gosh command tree. The status of whichever
// command runs is stored in *code.
func NewRootCommand(version string, st Streams, code *int) *cobra.Command {
	var (
		opts    Options
		command string
	)

	root := &cobra.Command{
		Use:           "gosh",
		Short:         "A small command shell",
		Long:          "gosh reads command lines and runs them as pipelines of external programs,\nwith | between stages and < and > for file redirection.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("command") {
				*code = RunCommand(cmd.Context(), opts, st, command)
				return nil
			}
			*code = RunInteractive(cmd.Context(), opts, st)
			return nil
		},
	}
	root.SetIn(st.Stdin)
	root.SetOut(st.Stdout)
	root.SetErr(st.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/gosh/config.yaml)")
	pf.BoolVar(&opts.NoRC, "no-rc", false, "do not run the startup script")
	pf.BoolVar(&opts.NoHistory, "no-history", false, "do not record executed lines")
	root.Flags().StringVarP(&command, "command", "c", "", "run one command line and exit with its status")

	root.AddCommand(newHistoryCommand(&opts, st, code))
	root.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Serve the shell as an MCP tool over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = RunMCP(opts, st, version)
			return nil
		},
	})
	return root
}

func newHistoryCommand(opts *Options, st Streams, code *int) *cobra.Command {
	historyPath := func() (string, error) {
		cfg, err := LoadConfig(*opts)
		if err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return cfg.History.Path, nil
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "Inspect the executed-line history",
	}

	history.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Check the history hash chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := historyPath()
			if err != nil {
				return err
			}
			*code = RunHistoryVerify(st.Stdout, path)
			return nil
		},
	})

	var (
		n      int
		asJSON bool
	)
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the most recent history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := historyPath()
			if err != nil {
				return err
			}
			*code = RunHistoryShow(st.Stdout, path, n, asJSON)
			return nil
		},
	}
	show.Flags().IntVarP(&n, "number", "n", DefaultShowCount, "number of entries")
	show.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	history.AddCommand(show)

	return history
}
