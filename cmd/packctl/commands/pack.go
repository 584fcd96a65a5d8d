package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"model-bundle-service/internal/adapters/secondary/fsstore"
	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/services"
)

func newPackCmd(openStore func() (*fsstore.Store, error)) *cobra.Command {
	var (
		defPath   string
		artifacts []string
	)

	c := &cobra.Command{
		Use:   "pack -f DEFINITION --artifact SLOT=PATH [--artifact SLOT=PATH...]",
		Short: "Pack trained model artifacts into a service bundle and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := domain.LoadDefinition(defPath)
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			builder, err := services.NewBuilder(def, store, nil)
			if err != nil {
				return err
			}

			for _, binding := range artifacts {
				slot, path, ok := strings.Cut(binding, "=")
				if !ok || slot == "" || path == "" {
					return fmt.Errorf("invalid artifact binding %q, expected SLOT=PATH", binding)
				}
				if err := builder.Pack(slot, path); err != nil {
					return err
				}
			}

			bundle, err := builder.Save(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Saved %s\n", bundle.Tag())
			cmd.Println(bundle.Path)
			return nil
		},
	}

	c.Flags().StringVarP(&defPath, "file", "f", "", "path to the service definition YAML")
	c.Flags().StringArrayVar(&artifacts, "artifact", nil, "artifact binding SLOT=PATH (repeatable)")
	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("artifact")
	return c
}
