package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/flit/internal/apps"
	"github.com/runger/flit/internal/config"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rescan installed applications and rebuild the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := config.DefaultPaths()
		if err := paths.EnsureDirectories(); err != nil {
			return err
		}

		src := &apps.CachedSource{
			Path:    paths.AppCacheFile(),
			Wrapped: apps.NewDesktopSource(),
		}
		records, err := src.Refresh()
		if err != nil {
			return fmt.Errorf("failed to rescan applications: %w", err)
		}

		fmt.Printf("indexed %d applications\n", len(records))
		return nil
	},
}
