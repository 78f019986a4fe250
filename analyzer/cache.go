package analyzer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// cacheEntry is the persisted form of one parse result. The source file
// itself is not stored; it is reattached on retrieval so the entry stays a
// pure function of file content.
type cacheEntry struct {
	Aliases   map[string]string
	Functions []*models.ParsedFunction
	Types     []*models.ParsedTypeDecl
}

// CacheManager persists parse results on disk keyed by a content hash. A hit
// can never change the generated output: two files with the same bytes parse
// to the same declarations, whatever their paths or timestamps.
type CacheManager struct {
	cacheDir string
	mutex    sync.RWMutex
}

// NewCacheManager opens (creating if needed) the cache directory. An empty
// cacheDir defaults to ".tsgen-cache" under the working directory.
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".tsgen-cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &CacheManager{cacheDir: cacheDir}, nil
}

// contentKey hashes file content into the cache file name.
func contentKey(content []byte) string {
	return fmt.Sprintf("%016x.parse", xxh3.Hash(content))
}

func (cm *CacheManager) cachePath(key string) string {
	return filepath.Join(cm.cacheDir, key)
}

// Get retrieves the parse result for a file's current content, if present.
func (cm *CacheManager) Get(file *models.SourceFile) (*models.ParsedFile, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	data, err := os.ReadFile(cm.cachePath(contentKey(file.Content)))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, false
	}

	return &models.ParsedFile{
		File:      file,
		Aliases:   entry.Aliases,
		Functions: entry.Functions,
		Types:     entry.Types,
	}, true
}

// Put stores a parse result under the file's content hash. Failures are
// swallowed; the cache is an accelerator, not a dependency.
func (cm *CacheManager) Put(file *models.SourceFile, pf *models.ParsedFile) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	entry := cacheEntry{
		Aliases:   pf.Aliases,
		Functions: pf.Functions,
		Types:     pf.Types,
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(&entry); err != nil {
		return
	}
	_ = os.WriteFile(cm.cachePath(contentKey(file.Content)), buffer.Bytes(), 0644)
}

// Clear removes every cache entry, leaving the directory in place.
func (cm *CacheManager) Clear() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(cm.cacheDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete cache file: %w", err)
		}
	}
	return nil
}

// Dir returns the cache directory path.
func (cm *CacheManager) Dir() string {
	return cm.cacheDir
}
