package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frame/internal/apikey"
	"frame/internal/services/backend"
)

func newAPIKeyCommand(ctx *commandContext) *cobra.Command {
	apiKeyCmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the backend API key stored locally",
	}

	var reveal bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored API key, requesting one if none is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPIKeys(func(keys *apikey.Manager, _ *backend.Client) error {
				key, err := keys.Ensure(cmd.Context())
				if err != nil {
					return err
				}
				if !reveal {
					key = maskKey(key)
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	}
	showCmd.Flags().BoolVar(&reveal, "reveal", false, "Print the full key")

	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Request a new API key and replace the stored one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPIKeys(func(keys *apikey.Manager, _ *backend.Client) error {
				key, err := keys.Rotate(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored new API key %s\n", maskKey(key))
				return nil
			})
		},
	}

	forgetCmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPIKeys(func(keys *apikey.Manager, _ *backend.Client) error {
				if err := keys.Forget(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
				return nil
			})
		},
	}

	apiKeyCmd.AddCommand(showCmd, rotateCmd, forgetCmd)
	return apiKeyCmd
}

func maskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 8 {
		return "********"
	}
	return string(runes[:4]) + "..." + string(runes[len(runes)-4:])
}
