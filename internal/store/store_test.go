package store

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/brijesht/folio/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "folio-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type doc struct {
	Title string `json:"title"`
	Order int    `json:"display_order"`
}

func TestPushGeneratesDistinctKeys(t *testing.T) {
	db := testDB(t)

	k1, err := db.Push("projects", doc{Title: "one"})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	k2, err := db.Push("projects", doc{Title: "two"})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if k1 == "" || k1 == k2 {
		t.Fatalf("keys must be non-empty and distinct: %q vs %q", k1, k2)
	}
}

func TestSetOverwritesFullRecord(t *testing.T) {
	db := testDB(t)

	key, _ := db.Push("projects", map[string]any{"title": "old", "extra": "field"})
	if err := db.Set("projects", key, doc{Title: "new", Order: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got map[string]any
	if err := db.Get("projects", key, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["title"] != "new" {
		t.Errorf("title = %v, want new", got["title"])
	}
	// Full overwrite, not merge: the old field must be gone.
	if _, ok := got["extra"]; ok {
		t.Error("overwrite kept a field from the previous document")
	}
}

func TestPatchMergesSingleField(t *testing.T) {
	db := testDB(t)

	key, _ := db.Push("messages", map[string]any{"subject": "Hi", "is_read": false})
	if err := db.Patch("messages", key, map[string]any{"is_read": true}); err != nil {
		t.Fatalf("Patch: %v", err)
	}

	var got map[string]any
	if err := db.Get("messages", key, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["is_read"] != true {
		t.Errorf("is_read = %v, want true", got["is_read"])
	}
	if got["subject"] != "Hi" {
		t.Errorf("patch clobbered subject: %v", got["subject"])
	}
}

func TestPatchMissingRecord(t *testing.T) {
	db := testDB(t)
	err := db.Patch("messages", "nope", map[string]any{"is_read": true})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	db := testDB(t)

	key, _ := db.Push("skills", doc{Title: "Go"})
	if err := db.Delete("skills", key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var got doc
	if err := db.Get("skills", key, &got); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := db.Delete("skills", key); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	db := testDB(t)

	for _, title := range []string{"a", "b", "c"} {
		if _, err := db.Push("experiences", doc{Title: title}); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	records, err := db.List("experiences")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for i, want := range []string{"a", "b", "c"} {
		var d doc
		if err := json.Unmarshal(records[i].Data, &d); err != nil {
			t.Fatal(err)
		}
		if d.Title != want {
			t.Errorf("records[%d].Title = %q, want %q", i, d.Title, want)
		}
	}
}

func TestCollectionsAreIndependent(t *testing.T) {
	db := testDB(t)

	key, _ := db.Push("projects", doc{Title: "p"})
	var got doc
	if err := db.Get("skills", key, &got); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("key leaked across collections: %v", err)
	}
}
