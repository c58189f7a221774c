package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/adrg/xdg"
	"github.com/vmihailenco/msgpack/v5"

	"reindent/internal/indent"
	"reindent/internal/lang"
	"reindent/internal/version"
)

// Current schema version - increment when CachePayload format changes
const cacheSchemaVersion uint16 = 1

// formatterRevision changes whenever a strategy can produce different output
// for the same input. Released builds are also separated by version.
const formatterRevision = 2

// Digest is a SHA-256 cache key.
type Digest [32]byte

// String returns the hex form of d.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// CacheKey identifies a formatting job: the decoded text and every setting
// that influences the output. salt carries configuration state such as
// custom rule sets.
func CacheKey(text string, l lang.Language, unit indent.Unit, salt string) Digest {
	h := sha256.New()
	fmt.Fprintf(h, "v%d\x00%s+r%d\x00%s\x00%s\x00%d\x00%s\x00",
		cacheSchemaVersion, version.Get().Version, formatterRevision, l, unit.Kind, unit.Width, salt)
	_, _ = h.Write([]byte(text))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Cache stores formatted outputs on disk, keyed by Digest.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is the cached outcome of one dispatch.
type CachePayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Formatted string
	Size      uint32 // len(Formatted), checked on read
	Strategy  string
	Degraded  bool
	Reason    string
}

// OpenCache initializes and returns a cache under the XDG cache directory.
func OpenCache(app string) (*Cache, error) {
	// Pick up environment changes made after start-up.
	xdg.Reload()
	return OpenCacheDir(filepath.Join(xdg.CacheHome, app))
}

// OpenCacheDir opens a cache rooted at dir, creating it if needed.
func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "fmt", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *Cache) Put(key Digest, payload *CachePayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	size, err := safecast.Conv[uint32](len(payload.Formatted))
	if err != nil {
		return fmt.Errorf("cache payload too large: %w", err)
	}
	payload.Schema = cacheSchemaVersion
	payload.Size = size

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := os.Remove(f.Name()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) && err == nil {
			err = removeErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing, stale or truncated entry is a miss.
func (c *Cache) Get(key Digest) (*CachePayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload CachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	if size, err := safecast.Conv[int](payload.Size); err != nil || size != len(payload.Formatted) {
		return nil, false, nil
	}
	return &payload, true, nil
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
