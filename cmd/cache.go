package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the verification cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and age bounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Gateway.Stats(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <email> [email...]",
	Short: "Delete cached verification results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if len(args) == 1 {
			deleted, err := env.Gateway.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if deleted {
				fmt.Printf("deleted %s\n", args[0])
			} else {
				fmt.Printf("not cached: %s\n", args[0])
			}
			return nil
		}

		count, err := env.Gateway.DeleteAll(ctx, args)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d of %d entries\n", count, len(args))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached verification result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		count, err := env.Gateway.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d entries\n", count)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheDeleteCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
