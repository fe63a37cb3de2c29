package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
)

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "antigravity.json"))
	_, err := s.Load()
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "antigravity.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewStore(path).Load()
	if !errors.Is(err, errs.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "antigravity.json")
	s := NewStore(path)

	r := mustParse(t, `{"access_token":"old","refresh_token":"rt","timestamp":1700000000000,"custom":{"a":1}}`)
	r.ApplyRefresh(Grant{AccessToken: "new", ExpiresIn: 3600}, time.Unix(1700000000, 0))
	if err := s.Save(r); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	if leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".account-*")); len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Normalize().AccessToken; got != "new" {
		t.Errorf("AccessToken = %q, want new", got)
	}
	if _, ok := loaded.get("custom", "a"); !ok {
		t.Error("unknown key lost across save")
	}
}

func TestStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	// A regular file cannot be used as a parent directory.
	s := NewStore(filepath.Join(blocker, "antigravity.json"))
	if err := s.Save(mustParse(t, `{}`)); err == nil {
		t.Error("expected Save to fail")
	}
	if s.Path() != filepath.Join(blocker, "antigravity.json") {
		t.Errorf("Path() = %q", s.Path())
	}
}

func TestStore_ConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "antigravity.json"))

	const writers = 32
	errCh := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		r := mustParse(t, fmt.Sprintf(`{"access_token":"tok-%d","refresh_token":"rt"}`, i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- s.Save(r)
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Errorf("Save: %v", err)
		}
	}
	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load after concurrent saves: %v", err)
	}
	if got := loaded.Normalize().RefreshToken; got != "rt" {
		t.Errorf("RefreshToken = %q, want rt", got)
	}
	if leftovers, _ := filepath.Glob(filepath.Join(dir, ".account-*")); len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
