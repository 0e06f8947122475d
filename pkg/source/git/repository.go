package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/telemetry/metrics"
)

// ErrNotCloned is returned by operations that need a local clone.
var ErrNotCloned = errors.New("repository not cloned")

// Commit describes the checked-out commit.
type Commit struct {
	SHA       string    `json:"sha"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Branch    string    `json:"branch"`
}

// Short returns the abbreviated SHA.
func (c *Commit) Short() string {
	return shortSHA(c.SHA)
}

// PullResult describes one pull.
type PullResult struct {
	FromSHA string
	ToSHA   string

	// Changed holds repository-relative paths added, modified or deleted
	// between FromSHA and ToSHA.
	Changed []string
}

// HadChanges reports whether the pull moved HEAD.
func (p *PullResult) HadChanges() bool {
	return p.FromSHA != p.ToSHA
}

// Repository is a local clone of one branch.
type Repository struct {
	config     config.GitConfig
	extensions []string
	auth       Auth
	metrics    *metrics.Collector

	mu   sync.RWMutex
	repo *gogit.Repository
}

// NewRepository validates cfg and prepares a repository. Nothing touches
// the network until Clone. extensions select the document files.
func NewRepository(cfg config.GitConfig, extensions []string, collector *metrics.Collector) (*Repository, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		cfg.Branch = config.DefaultGitBranch
	}
	if cfg.Clone.LocalPath == "" {
		cfg.Clone.LocalPath = config.DefaultGitLocalPath
	}
	if cfg.Poll.Timeout <= 0 {
		cfg.Poll.Timeout = config.DefaultGitTimeout
	}
	if len(extensions) == 0 {
		extensions = []string{config.DefaultWatchExtension}
	}
	auth, err := NewAuth(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth: %w", err)
	}
	return &Repository{config: cfg, extensions: extensions, auth: auth, metrics: collector}, nil
}

// Clone makes the local clone, or opens an existing one unless
// CleanOnStart is set.
func (r *Repository) Clone(ctx context.Context) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() { r.metrics.RecordGitSync(err, time.Since(start)) }()

	local := r.config.Clone.LocalPath
	if r.config.Clone.CleanOnStart {
		if err := os.RemoveAll(local); err != nil {
			return fmt.Errorf("failed to clean existing clone: %w", err)
		}
	}

	if _, statErr := os.Stat(filepath.Join(local, ".git")); statErr == nil {
		repo, err := gogit.PlainOpen(local)
		if err != nil {
			return fmt.Errorf("failed to open existing clone: %w", err)
		}
		r.repo = repo
		return nil
	}

	if err := os.MkdirAll(local, 0o755); err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}
	method, err := r.auth.Method()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, r.config.Poll.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, local, false, &gogit.CloneOptions{
		URL:           r.config.Repository,
		Auth:          method,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  true,
		Depth:         r.config.Clone.Depth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", r.config.Repository, err)
	}
	r.repo = repo
	return nil
}

// Pull fast-forwards the clone and reports the changed paths.
func (r *Repository) Pull(ctx context.Context) (_ *PullResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, ErrNotCloned
	}

	start := time.Now()
	defer func() { r.metrics.RecordGitSync(err, time.Since(start)) }()

	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	method, err := r.auth.Method()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, r.config.Poll.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName:    gogit.DefaultRemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  true,
		Auth:          method,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	newHead, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	result := &PullResult{FromSHA: head.Hash().String(), ToSHA: newHead.Hash().String()}
	if result.HadChanges() {
		if result.Changed, err = r.changed(head.Hash(), newHead.Hash()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *Repository) changed(from, to plumbing.Hash) ([]string, error) {
	fromCommit, err := r.repo.CommitObject(from)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", shortSHA(from.String()), err)
	}
	toCommit, err := r.repo.CommitObject(to)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", shortSHA(to.String()), err)
	}
	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	files := make([]string, 0, len(changes))
	for _, c := range changes {
		if c.To.Name != "" {
			files = append(files, c.To.Name)
		} else {
			files = append(files, c.From.Name)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Head describes the checked-out commit.
func (r *Repository) Head() (*Commit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return nil, ErrNotCloned
	}
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	return &Commit{
		SHA:       c.Hash.String(),
		Author:    c.Author.Name,
		Email:     c.Author.Email,
		Timestamp: c.Author.When,
		Message:   strings.TrimSpace(c.Message),
		Branch:    r.config.Branch,
	}, nil
}

// Root is the directory documents are listed from.
func (r *Repository) Root() string {
	return filepath.Join(r.config.Clone.LocalPath, r.config.Path)
}

// Documents lists the document files under Root, sorted. Hidden files
// and directories are skipped.
func (r *Repository) Documents() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return nil, ErrNotCloned
	}
	root := r.Root()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && r.IsDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return files, nil
}

// ChangedDocuments maps the repository-relative paths of a pull to local
// document paths under Root. removed holds the ones no longer present.
func (r *Repository) ChangedDocuments(res *PullResult) (present, removed []string) {
	prefix := filepath.Clean(r.config.Path)
	for _, rel := range res.Changed {
		rel = filepath.FromSlash(rel)
		if prefix != "." && !strings.HasPrefix(rel, prefix+string(filepath.Separator)) {
			continue
		}
		if !r.IsDocument(rel) {
			continue
		}
		path := filepath.Join(r.config.Clone.LocalPath, rel)
		if _, err := os.Stat(path); err != nil {
			removed = append(removed, path)
			continue
		}
		present = append(present, path)
	}
	return present, removed
}

// IsDocument reports whether path has a document extension.
func (r *Repository) IsDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range r.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
