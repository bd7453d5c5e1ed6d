package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCacheCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the elimination-order cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch cfg.Cache.Backend {
			case "redis":
				fmt.Fprintln(os.Stdout, "redis://"+cfg.Cache.RedisAddr)
			case "none":
				fmt.Fprintln(os.Stdout, "(caching disabled)")
			default:
				dir := cfg.Cache.Dir
				if dir == "" {
					dir = defaultCacheDir()
				}
				fmt.Fprintln(os.Stdout, dir)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached elimination orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Cache.Backend != "file" && cfg.Cache.Backend != "" {
				return fmt.Errorf("cache clear supports the file backend only")
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				dir = defaultCacheDir()
			}
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s cleared %s\n", styleIconSuccess.Render("✓"), dir)
			return nil
		},
	})

	return cmd
}
