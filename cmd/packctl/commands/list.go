package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"model-bundle-service/internal/adapters/secondary/fsstore"
)

func newListCmd(openStore func() (*fsstore.Store, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bundles in the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			bundles, err := store.Scan()
			if err != nil {
				return err
			}
			sort.Slice(bundles, func(i, j int) bool {
				if bundles[i].Name != bundles[j].Name {
					return bundles[i].Name < bundles[j].Name
				}
				return bundles[i].Version > bundles[j].Version
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tARTIFACTS\tCREATED")
			for _, b := range bundles {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					b.Name, b.Version, len(b.Artifacts),
					b.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}
