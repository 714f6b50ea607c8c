package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/funnelkit/pkg/storage"
)

// storageCommand creates the storage management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect and reset saved funnels",
	}

	cmd.AddCommand(c.storagePathCommand())
	cmd.AddCommand(c.storageClearCommand())

	return cmd
}

// storagePathCommand prints where the current workspace is saved.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the current workspace is saved",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			sc, err := cfg.storageConfig()
			if err != nil {
				return err
			}
			slots, err := storage.NewSlots(cfg.Workspace)
			if err != nil {
				return err
			}

			switch sc.Backend {
			case storage.BackendFile:
				fs, err := storage.NewFileStore(sc.Dir)
				if err != nil {
					return err
				}
				fmt.Println(fs.Path(slots.GraphKey()))
				fmt.Println(fs.Path(slots.CountersKey()))
			case storage.BackendRedis:
				fmt.Printf("redis://%s/%d %s%s\n", sc.Redis.Addr, sc.Redis.DB, sc.Redis.Prefix, slots.GraphKey())
				fmt.Printf("redis://%s/%d %s%s\n", sc.Redis.Addr, sc.Redis.DB, sc.Redis.Prefix, slots.CountersKey())
			case storage.BackendMongo:
				fmt.Printf("%s.%s _id=%s\n", sc.Mongo.Database, sc.Mongo.Collection, slots.GraphKey())
				fmt.Printf("%s.%s _id=%s\n", sc.Mongo.Database, sc.Mongo.Collection, slots.CountersKey())
			default:
				printInfo("The %s backend does not persist anything", sc.Backend)
			}
			return nil
		},
	}
}

// storageClearCommand deletes both slots of the current workspace, resetting
// label numbering as well as the funnel.
func (c *CLI) storageClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved funnel and label counters of the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !yes {
				printWarning("This deletes workspace %s and restarts label numbering", cfg.Workspace)
				printNextStep("Run again with", appName+" storage clear --yes")
				return errSilent
			}

			ctx := cmd.Context()
			st, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			slots, err := storage.NewSlots(cfg.Workspace)
			if err != nil {
				return err
			}
			for _, key := range []string{slots.GraphKey(), slots.CountersKey()} {
				if err := st.Delete(ctx, key); err != nil {
					return err
				}
			}

			printSuccess("Deleted workspace %s", cfg.Workspace)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
