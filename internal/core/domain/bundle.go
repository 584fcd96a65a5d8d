package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
)

type BundleState string

const (
	BundleStateActive   BundleState = "ACTIVE"
	BundleStateArchived BundleState = "ARCHIVED"
)

// Frameworks a packed artifact may declare. Mirrors the set the downstream
// serving runtimes understand.
var SupportedFrameworks = map[string]bool{
	"sklearn":     true,
	"xgboost":     true,
	"tensorflow":  true,
	"pytorch":     true,
	"onnx":        true,
	"lightgbm":    true,
	"pmml":        true,
	"pickle":      true,
	"huggingface": true,
}

func ValidateFramework(framework string) error {
	if framework == "" {
		return nil
	}
	if !SupportedFrameworks[strings.ToLower(framework)] {
		return ErrUnsupportedFramework
	}
	return nil
}

// Artifact is one packed payload inside a saved bundle, addressed by its
// slot name within the bundle and by content digest within the store.
type Artifact struct {
	Slot      string        `json:"slot" yaml:"slot"`
	Framework string        `json:"framework,omitempty" yaml:"framework,omitempty"`
	Digest    digest.Digest `json:"digest" yaml:"digest"`
	Size      int64         `json:"size" yaml:"size"`
}

// Bundle is a saved, versioned service bundle: the service definition's
// metadata plus the packed artifacts and the filesystem location the store
// chose for it.
type Bundle struct {
	ID        uuid.UUID         `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	State     BundleState       `json:"state"`
	Digest    digest.Digest     `json:"digest"`
	Path      string            `json:"path"`
	Labels    map[string]string `json:"labels"`
	Artifacts []Artifact        `json:"artifacts"`
}

// Tag returns the name:version reference of the bundle.
func (b *Bundle) Tag() string {
	return b.Name + ":" + b.Version
}

func (b *Bundle) Artifact(slot string) (Artifact, bool) {
	for _, a := range b.Artifacts {
		if a.Slot == slot {
			return a, true
		}
	}
	return Artifact{}, false
}
