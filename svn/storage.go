package svn

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/treepunch/treepunch/logging"
)

// Storage is a Subversion repository addressed by a qualified depot URL,
// for example file:///opt/repos/project/trunk.
type Storage struct {
	runner   Runner
	depotURL *url.URL
}

// NewStorage parses and validates the qualified depot URL.
func NewStorage(runner Runner, depotURL string) (*Storage, error) {
	parsed, err := url.Parse(depotURL)
	if err != nil {
		return nil, fmt.Errorf("parse depot url %q: %w", depotURL, err)
	}
	switch parsed.Scheme {
	case "file", "http", "https", "svn", "svn+ssh":
	default:
		return nil, fmt.Errorf("depot url %q must use one of the protocols: file, http, https, svn, svn+ssh", depotURL)
	}
	return &Storage{runner: runner, depotURL: parsed}, nil
}

// DepotURL returns the qualified depot URL.
func (s *Storage) DepotURL() string {
	return s.depotURL.String()
}

// CreateRepository creates a new local repository backing the depot URL.
// Requires the file protocol. With reset, an existing repository at the
// path is removed first.
func (s *Storage) CreateRepository(fsys afero.Fs, reset bool) error {
	if s.depotURL.Scheme != "file" {
		return fmt.Errorf("repository can only be created for the file protocol but depot url is %q", s.DepotURL())
	}
	localPath := filepath.FromSlash(s.depotURL.Path)
	log := logging.Sub("svn")
	if reset {
		log.Info("remove existing repository", "path", localPath)
		if err := fsys.RemoveAll(localPath); err != nil {
			return fmt.Errorf("remove existing repository: %w", err)
		}
	}
	log.Info("create repository", "path", localPath)
	parent := filepath.Dir(localPath)
	if err := fsys.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create repository parent folder: %w", err)
	}
	_, err := s.runner.Run(parent, "svnadmin", "create", localPath)
	return err
}

// Mkdir creates a folder (including missing parents) directly in the
// repository.
func (s *Storage) Mkdir(relPath, message string) error {
	target := *s.depotURL
	target.Path = path.Join(target.Path, strings.TrimPrefix(relPath, "/"))
	log := logging.Sub("svn")
	log.Info("create depot folder", "url", target.String())
	_, err := s.runner.Run(".", "svn", "mkdir", "--non-interactive", "--parents", "--message", message, target.String())
	return err
}
