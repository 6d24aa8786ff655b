package main

import (
	"bufio"
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/gomud/pkg/config"
	"github.com/arthur-debert/gomud/pkg/session"
)

func newConnectCmd() *cobra.Command {
	var (
		modules   []string
		echoInput bool
	)

	cmd := &cobra.Command{
		Use:   "connect <host> <port>",
		Short: "Connect to a MUD server",
		Long: `Connect to a MUD server and enter the interactive loop: server output
goes to the terminal, input lines run through the script layer (aliases,
# commands) before being sent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}

			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("echo") {
				overrides["client.echo_input"] = echoInput
			}

			path := configPath
			if path == "" {
				path = config.ConfigFilePath()
			}
			cfg, err := config.LoadWithOverrides(path, overrides)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			s := session.New(ctx, cfg, args[0], args[0], port, cmd.OutOrStdout())
			for _, path := range modules {
				if err := s.LoadModule(path); err != nil {
					return err
				}
			}

			if err := s.Connect(); err != nil {
				return err
			}
			defer s.Disconnect()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				text := scanner.Text()
				if text == "#exit" {
					break
				}
				if err := s.Exec(text); err != nil {
					continue
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringSliceVarP(&modules, "module", "m", nil, "script module file to load (repeatable)")
	cmd.Flags().BoolVar(&echoInput, "echo", false, "echo sent commands back to the terminal")
	return cmd
}
