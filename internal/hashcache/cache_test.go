package hashcache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"picdup/internal/hashcache"
	"picdup/internal/imagefile"
	"picdup/internal/testsupport"
)

func openCache(t *testing.T, path string) *hashcache.Cache {
	t.Helper()
	cache, err := hashcache.Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func statFile(t *testing.T, path string) imagefile.File {
	t.Helper()
	file, err := imagefile.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return file
}

func TestStoreAndLookupHit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()

	results := map[string]string{path: "deadbeef"}
	if err := cache.StoreBatch(ctx, results, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}

	hits, misses, err := cache.LookupBatch(ctx, []imagefile.File{file}, "md5")
	if err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}
	if hits[path] != "deadbeef" {
		t.Errorf("hit = %q, want deadbeef", hits[path])
	}
	if len(misses) != 0 {
		t.Errorf("expected no misses, got %d", len(misses))
	}
}

func TestLookupAlgorithmIsolation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()

	if err := cache.StoreBatch(ctx, map[string]string{path: "deadbeef"}, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}

	hits, misses, err := cache.LookupBatch(ctx, []imagefile.File{file}, "sha256")
	if err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits under sha256, got %v", hits)
	}
	if len(misses) != 1 {
		t.Errorf("expected 1 miss, got %d", len(misses))
	}
}

func TestLookupInvalidatedBySizeChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()
	if err := cache.StoreBatch(ctx, map[string]string{path: "deadbeef"}, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}

	testsupport.WriteFile(t, path, []byte("content grew"))

	hits, misses, err := cache.LookupBatch(ctx, []imagefile.File{statFile(t, path)}, "md5")
	if err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}
	if len(hits) != 0 || len(misses) != 1 {
		t.Errorf("expected miss after size change, got hits=%v misses=%d", hits, len(misses))
	}
}

func TestLookupInvalidatedByMtimeChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()
	if err := cache.StoreBatch(ctx, map[string]string{path: "deadbeef"}, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}

	// Same size, advanced mtime: must invalidate.
	future := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	hits, misses, err := cache.LookupBatch(ctx, []imagefile.File{statFile(t, path)}, "md5")
	if err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}
	if len(hits) != 0 || len(misses) != 1 {
		t.Errorf("expected miss after mtime change, got hits=%v misses=%d", hits, len(misses))
	}
}

func TestLookupMissingFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()
	if err := cache.StoreBatch(ctx, map[string]string{path: "deadbeef"}, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	hits, misses, err := cache.LookupBatch(ctx, []imagefile.File{file}, "md5")
	if err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}
	if len(hits) != 0 || len(misses) != 1 {
		t.Errorf("expected miss for vanished file, got hits=%v misses=%d", hits, len(misses))
	}
}

func TestStoreSkipsVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()
	if err := cache.StoreBatch(ctx, map[string]string{path: "deadbeef"}, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}
	count, err := cache.EntryCount(ctx)
	if err != nil {
		t.Fatalf("EntryCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 entries, got %d", count)
	}
}

func TestPurgeMissing(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.jpg")
	gone := filepath.Join(dir, "gone.jpg")
	testsupport.WriteFile(t, keep, []byte("keep"))
	testsupport.WriteFile(t, gone, []byte("gone"))
	files := []imagefile.File{statFile(t, keep), statFile(t, gone)}

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()
	results := map[string]string{keep: "aaaa", gone: "bbbb"}
	if err := cache.StoreBatch(ctx, results, files, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}
	if err := os.Remove(gone); err != nil {
		t.Fatalf("remove: %v", err)
	}

	deleted, err := cache.PurgeMissing(ctx)
	if err != nil {
		t.Fatalf("PurgeMissing failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	count, err := cache.EntryCount(ctx)
	if err != nil {
		t.Fatalf("EntryCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("EntryCount = %d, want 1", count)
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)
	dbPath := filepath.Join(dir, "hashes.db")

	ctx := context.Background()
	first, err := hashcache.Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.StoreBatch(ctx, map[string]string{path: "cafe"}, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := openCache(t, dbPath)
	hits, _, err := second.LookupBatch(ctx, []imagefile.File{file}, "md5")
	if err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}
	if hits[path] != "cafe" {
		t.Errorf("hit after reopen = %q, want cafe", hits[path])
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, path, []byte("content"))
	file := statFile(t, path)

	cache := openCache(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()
	if err := cache.StoreBatch(ctx, map[string]string{path: "cafe"}, []imagefile.File{file}, "md5"); err != nil {
		t.Fatalf("StoreBatch failed: %v", err)
	}

	deleted, err := cache.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestOpenRejectsSecondProcessLock(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hashes.db")
	first := openCache(t, dbPath)
	_ = first

	if _, err := hashcache.Open(dbPath, nil); err == nil {
		t.Fatal("expected second Open to fail while lock is held")
	}
}
