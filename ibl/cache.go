package ibl

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pbr-viewer/log"
	"pbr-viewer/pbr"
)

var logger = log.New("ibl")

const cacheExt = ".iblenv"

// Cache stores baked bundles on disk, one file per HDR source and size set.
type Cache struct {
	Dir         string
	Compression Compression
}

func NewCache(dir string) *Cache {
	return &Cache{Dir: dir, Compression: CompressionLZ4Fast}
}

// Key identifies a bake. It changes when the source file is modified or when
// any target size changes.
func Key(hdrPath string, sizes pbr.Sizes) (string, error) {
	abs, err := filepath.Abs(hdrPath)
	if err != nil {
		return "", fmt.Errorf("ibl: cache key: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("ibl: cache key: %w", err)
	}
	h := sha1.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|%d|%d|%d",
		abs, info.Size(), info.ModTime().UnixNano(),
		sizes.Cubemap, sizes.Irradiance, sizes.Prefilter, sizes.BRDF)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+cacheExt)
}

// Load returns ErrCacheMiss when nothing is stored under key and ErrCorrupt
// when the stored file cannot be decoded.
func (c *Cache) Load(key string) (*Bundle, error) {
	f, err := os.Open(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("ibl: open cache: %w", err)
	}
	defer f.Close()

	b, err := Decode(f)
	if err != nil {
		return nil, err
	}
	logger.Debugf("cache hit %s", key)
	return b, nil
}

// Store writes the bundle atomically under key.
func (c *Cache) Store(key string, b *Bundle) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("ibl: create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.Dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("ibl: create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, b, c.Compression); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ibl: close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("ibl: commit cache file: %w", err)
	}
	logger.Infof("stored environment %s in cache", key)
	return nil
}

// Evict removes a stored bundle. Missing entries are not an error.
func (c *Cache) Evict(key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ibl: evict: %w", err)
	}
	return nil
}
