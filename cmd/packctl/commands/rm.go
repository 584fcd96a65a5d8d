package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"model-bundle-service/internal/adapters/secondary/fsstore"
)

func newRemoveCmd(openStore func() (*fsstore.Store, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME:VERSION",
		Short: "Remove a bundle from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, version, err := parseTag(args[0])
			if err != nil {
				return err
			}
			if version == "" {
				return fmt.Errorf("bundle reference %q must include a version", args[0])
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Remove(name, version); err != nil {
				return err
			}

			cmd.Printf("Removed %s:%s\n", name, version)
			return nil
		},
	}
}
