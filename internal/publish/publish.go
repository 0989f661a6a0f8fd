// Package publish delivers rendered artifacts to their destination: a local
// directory or an S3-compatible bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gyeh/schoolcases/internal/export"
	"github.com/gyeh/schoolcases/internal/parquetread"
)

// Publisher writes a complete artifact set and returns where each landed.
type Publisher interface {
	Publish(ctx context.Context, artifacts []export.Artifact) ([]string, error)
}

// LocalDir writes artifacts into a directory, replacing existing files.
type LocalDir struct {
	Dir string
}

// Publish writes each artifact to a temporary file and renames it into
// place, so readers never see a partially written file.
func (l LocalDir) Publish(ctx context.Context, artifacts []export.Artifact) ([]string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		dst := filepath.Join(l.Dir, a.Name)
		tmp := dst + ".tmp"
		if err := os.WriteFile(tmp, a.Body, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", a.Name, err)
		}
		if err := os.Rename(tmp, dst); err != nil {
			os.Remove(tmp)
			return written, fmt.Errorf("rename %s: %w", a.Name, err)
		}
		written = append(written, dst)
	}
	return written, nil
}

// Multi publishes to every destination in order, stopping at the first
// failure.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, artifacts []export.Artifact) ([]string, error) {
	var all []string
	for _, p := range m {
		locs, err := p.Publish(ctx, artifacts)
		all = append(all, locs...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// LoadDir reads a previously written artifact set back from dir. Missing
// optional artifacts are skipped; a directory with none is an error.
func LoadDir(dir string) ([]export.Artifact, error) {
	var artifacts []export.Artifact
	for _, name := range export.Names() {
		path := filepath.Join(dir, name)
		body, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if name == export.CasesParquet {
			if _, err := parquetread.Inspect(path); err != nil {
				return nil, fmt.Errorf("check %s: %w", name, err)
			}
		}
		artifacts = append(artifacts, export.Artifact{Name: name, ContentType: export.ContentType(name), Body: body})
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("no artifacts found in %s", dir)
	}
	return artifacts, nil
}
