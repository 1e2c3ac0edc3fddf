package store

import (
	"bytes"
	"errors"
	"testing"
)

// testDB runs the shared test suite against a DB implementation.
func testDB(t *testing.T, db DB) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		if err := db.Put([]byte("key1"), []byte("value1")); err != nil {
			t.Fatalf("Put() error: %v", err)
		}

		val, err := db.Get([]byte("key1"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if !bytes.Equal(val, []byte("value1")) {
			t.Errorf("Get() = %q, want %q", val, "value1")
		}
	})

	t.Run("GetNonexistent", func(t *testing.T) {
		_, err := db.Get([]byte("nonexistent"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("Has", func(t *testing.T) {
		db.Put([]byte("exists"), []byte("yes"))

		ok, err := db.Has([]byte("exists"))
		if err != nil {
			t.Fatalf("Has() error: %v", err)
		}
		if !ok {
			t.Error("Has() = false for existing key")
		}

		ok, err = db.Has([]byte("missing"))
		if err != nil {
			t.Fatalf("Has() error: %v", err)
		}
		if ok {
			t.Error("Has() = true for missing key")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		db.Put([]byte("ow"), []byte("first"))
		db.Put([]byte("ow"), []byte("second"))

		val, err := db.Get([]byte("ow"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if !bytes.Equal(val, []byte("second")) {
			t.Errorf("Get() = %q, want %q", val, "second")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db.Put([]byte("gone"), []byte("soon"))
		if err := db.Delete([]byte("gone")); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := db.Get([]byte("gone")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() after Delete() error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("ForEachPrefix", func(t *testing.T) {
		db.Put([]byte("pfx/a"), []byte("1"))
		db.Put([]byte("pfx/b"), []byte("2"))
		db.Put([]byte("other/c"), []byte("3"))

		seen := make(map[string]string)
		err := db.ForEach([]byte("pfx/"), func(key, value []byte) error {
			seen[string(key)] = string(value)
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach() error: %v", err)
		}
		if len(seen) != 2 {
			t.Errorf("ForEach() visited %d keys, want 2", len(seen))
		}
		if seen["pfx/a"] != "1" || seen["pfx/b"] != "2" {
			t.Errorf("ForEach() saw %v", seen)
		}
	})

	t.Run("ForEachStopsOnError", func(t *testing.T) {
		db.Put([]byte("stop/a"), []byte("1"))
		db.Put([]byte("stop/b"), []byte("2"))

		boom := errors.New("boom")
		visits := 0
		err := db.ForEach([]byte("stop/"), func(key, value []byte) error {
			visits++
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("ForEach() error = %v, want boom", err)
		}
		if visits != 1 {
			t.Errorf("ForEach() visited %d keys after error, want 1", visits)
		}
	})
}

func TestMemoryDB(t *testing.T) {
	db := NewMemory()
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	defer db.Close()
	testDB(t, db)
}

func TestMemoryDB_ValueIsolation(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	original := []byte("value")
	db.Put([]byte("k"), original)
	original[0] = 'X'

	val, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !bytes.Equal(val, []byte("value")) {
		t.Errorf("stored value aliased the caller's slice: %q", val)
	}
}

func TestBadgerDB_Persistence(t *testing.T) {
	dir := t.TempDir()

	db, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	if err := db.Put([]byte("persist"), []byte("me")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() reopen error: %v", err)
	}
	defer reopened.Close()

	val, err := reopened.Get([]byte("persist"))
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if !bytes.Equal(val, []byte("me")) {
		t.Errorf("Get() = %q, want %q", val, "me")
	}
}
