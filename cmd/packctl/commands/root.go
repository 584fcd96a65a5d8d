package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"model-bundle-service/internal/adapters/secondary/fsstore"
)

// NewRootCmd builds the packctl command tree. packctl operates directly on a
// local bundle store; the registry service picks up saved bundles through
// its store watcher.
func NewRootCmd() *cobra.Command {
	var (
		storeRoot string
		verbose   bool
	)

	root := &cobra.Command{
		Use:           "packctl",
		Short:         "Pack trained model artifacts into versioned service bundles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&storeRoot, "store", defaultStoreRoot(), "bundle store root directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	openStore := func() (*fsstore.Store, error) {
		store, err := fsstore.New(storeRoot)
		if err != nil {
			return nil, fmt.Errorf("open bundle store: %w", err)
		}
		return store, nil
	}

	root.AddCommand(
		newPackCmd(openStore),
		newListCmd(openStore),
		newGetCmd(openStore),
		newRemoveCmd(openStore),
	)
	return root
}

func defaultStoreRoot() string {
	if root := os.Getenv("STORE_ROOT"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".model-bundles"
	}
	return filepath.Join(home, ".model-bundles")
}

// parseTag splits NAME[:VERSION], validating the name part.
func parseTag(tag string) (name, version string, err error) {
	name = tag
	if i := strings.LastIndex(tag, ":"); i >= 0 {
		name, version = tag[:i], tag[i+1:]
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid bundle reference %q", tag)
	}
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return "", "", fmt.Errorf("invalid bundle name %q: %w", name, err)
	}
	return name, version, nil
}
