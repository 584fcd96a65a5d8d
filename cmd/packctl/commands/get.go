package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"model-bundle-service/internal/adapters/secondary/fsstore"
	"model-bundle-service/internal/core/domain"
)

func newGetCmd(openStore func() (*fsstore.Store, error)) *cobra.Command {
	var verify bool

	c := &cobra.Command{
		Use:   "get NAME[:VERSION]",
		Short: "Show a bundle from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, version, err := parseTag(args[0])
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			var bundle *domain.Bundle
			if version != "" {
				bundle, err = store.Load(name, version)
				if err != nil {
					return err
				}
			} else {
				bundle, err = latestVersion(store, name)
				if err != nil {
					return err
				}
			}

			if verify {
				if err := store.Verify(bundle); err != nil {
					return err
				}
			}

			out := struct {
				Name      string            `yaml:"name"`
				Version   string            `yaml:"version"`
				Digest    string            `yaml:"digest"`
				Path      string            `yaml:"path"`
				CreatedAt string            `yaml:"createdAt"`
				Labels    map[string]string `yaml:"labels,omitempty"`
				Artifacts []domain.Artifact `yaml:"artifacts"`
			}{
				Name:      bundle.Name,
				Version:   bundle.Version,
				Digest:    string(bundle.Digest),
				Path:      bundle.Path,
				CreatedAt: bundle.CreatedAt.Format("2006-01-02T15:04:05Z"),
				Labels:    bundle.Labels,
				Artifacts: bundle.Artifacts,
			}
			raw, err := yaml.Marshal(&out)
			if err != nil {
				return fmt.Errorf("render bundle: %w", err)
			}
			cmd.Print(string(raw))
			return nil
		},
	}

	c.Flags().BoolVar(&verify, "verify", false, "re-hash payloads against recorded digests")
	return c
}

func latestVersion(store *fsstore.Store, name string) (*domain.Bundle, error) {
	bundles, err := store.Scan()
	if err != nil {
		return nil, err
	}
	var latest *domain.Bundle
	for _, b := range bundles {
		if b.Name != name {
			continue
		}
		if latest == nil || b.Version > latest.Version {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.ErrHeaderNotFound
	}
	return latest, nil
}
