package template

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/luisz08/notif-svc/pkg/errors"
)

// Manager renders message templates from a directory of template files.
// Parsed templates are cached with a TTL so edits on disk are picked up
// without a restart.
type Manager struct {
	dir   string
	cache *gocache.Cache
}

func NewManager(dir string, cacheTTL time.Duration) *Manager {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Manager{
		dir:   dir,
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// Render renders the template identified by templateID with the given
// variables. Missing templates and rendering faults are reported as
// typed errors so callers can distinguish them.
func (m *Manager) Render(templateID string, variables map[string]interface{}) (string, error) {
	tmpl, err := m.lookup(templateID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", errors.TemplateRender(templateID, err)
	}
	return buf.String(), nil
}

// ContentHash returns the hex sha256 digest of the rendered content.
// The digest is stable across runs and is the deduplication key.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// TemplateIDs lists the template files available in the directory.
func (m *Manager) TemplateIDs() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tmpl") {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}

func (m *Manager) lookup(templateID string) (*template.Template, error) {
	if cached, ok := m.cache.Get(templateID); ok {
		return cached.(*template.Template), nil
	}

	// Reject path traversal: template ids are bare file names.
	if templateID != filepath.Base(templateID) {
		return nil, errors.TemplateNotFound(templateID)
	}

	path := filepath.Join(m.dir, templateID)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.TemplateNotFound(templateID)
		}
		return nil, errors.TemplateRender(templateID, err)
	}

	tmpl, err := template.New(templateID).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return nil, errors.TemplateRender(templateID, err)
	}

	m.cache.SetDefault(templateID, tmpl)
	return tmpl, nil
}
