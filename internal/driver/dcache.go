package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"modbind/internal/gogen"
	"modbind/internal/project"
	"modbind/internal/source"
	"modbind/internal/version"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит сгенерированные файлы пакетов по ключу входов.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedFile is one rendered output.
type CachedFile struct {
	Name    string
	Content []byte
}

// DiskPayload stores the outcome of one successful package run.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16
	// Tool is version.Fingerprint of the writer.
	Tool string

	Module  string
	Skipped bool // no //modbind:module in the package
	Entries int
	Files   []CachedFile
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Подкаталог "pkgs" упрощает чистку.
	return filepath.Join(c.dir, "pkgs", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. Payloads of
// another schema or tool build count as misses.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	var payload DiskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Tool != version.Fingerprint() {
		return false, nil
	}
	*out = payload
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey digests everything that determines a package's outputs: the
// tool build, the config and every input file (name and content).
func cacheKey(fs *source.FileSet, ids []source.FileID, cfg project.Config) project.Digest {
	parts := make([]project.Digest, 0, 2*len(ids)+1)
	parts = append(parts, cfg.Digest())
	for _, id := range ids {
		f := fs.Get(id)
		if f == nil {
			continue
		}
		parts = append(parts, project.HashString(filepath.Base(f.Path)), project.Digest(f.Hash))
	}
	return project.Combine(project.HashString(version.Fingerprint()), parts...)
}

func payloadFromFiles(module string, entries int, files []gogen.File) *DiskPayload {
	p := &DiskPayload{
		Schema:  diskCacheSchemaVersion,
		Tool:    version.Fingerprint(),
		Module:  module,
		Entries: entries,
		Files:   make([]CachedFile, len(files)),
	}
	for i, f := range files {
		p.Files[i] = CachedFile{Name: f.Name, Content: slices.Clone(f.Content)}
	}
	return p
}

func skippedPayload() *DiskPayload {
	return &DiskPayload{Schema: diskCacheSchemaVersion, Tool: version.Fingerprint(), Skipped: true}
}

func (p *DiskPayload) renderedFiles() []gogen.File {
	out := make([]gogen.File, len(p.Files))
	for i, f := range p.Files {
		out[i] = gogen.File{Name: f.Name, Content: f.Content}
	}
	return out
}
