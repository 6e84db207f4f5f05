package graph

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ppiankov/ontoguard/internal/model"
)

func openSQLiteStore(t *testing.T, path string) *Store {
	t.Helper()
	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s, err := Open(context.Background(), backend)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	s := openSQLiteStore(t, path)

	inst := setRisk(t, s, "Researcher", "High")
	err := s.Update(context.Background(), func(tx *Tx) error {
		a, _ := tx.UpsertConcept("Researcher", model.KindAgentType)
		cp, err := tx.UpsertConcept("DataAccess", model.KindCapability)
		if err != nil {
			return err
		}
		tool, err := tx.UpsertConcept("Browser", model.KindTool)
		if err != nil {
			return err
		}
		if err := tx.UpsertRelationship(model.InstanceOf, inst, a); err != nil {
			return err
		}
		if err := tx.UpsertRelationship(model.HasCapability, inst, cp); err != nil {
			return err
		}
		return tx.UpsertRelationship(model.UsesTool, inst, tool)
	})
	if err != nil {
		t.Fatal(err)
	}
	setRisk(t, s, "Researcher", "Low")

	want := s.Snapshot()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openSQLiteStore(t, path)
	defer reopened.Close()
	got := reopened.Snapshot()

	if !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot after reload differs\nwant %+v\ngot  %+v", want, got)
	}
	if levels := reopened.CurrentRiskLevels(inst); len(levels) != 1 || levels[0] != "Low" {
		t.Errorf("expected persisted risk [Low], got %v", levels)
	}
}

func TestSQLiteReopenKeepsIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	s := openSQLiteStore(t, path)
	first := upsertConcept(t, s, "Researcher", model.KindAgentType)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openSQLiteStore(t, path)
	defer reopened.Close()
	again := upsertConcept(t, reopened, "Researcher", model.KindAgentType)
	if first != again {
		t.Errorf("expected persisted id %s, got %s", first, again)
	}
	if reopened.Stats().Concepts != 1 {
		t.Errorf("expected 1 concept, got %d", reopened.Stats().Concepts)
	}
}

func TestSQLiteBackendPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graph.db")
	b, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if b.Path() != path {
		t.Errorf("expected %s, got %s", path, b.Path())
	}
}

func TestSQLiteClosedBackendIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := Open(context.Background(), backend)
	if err != nil {
		t.Fatal(err)
	}
	backend.Close()

	_, err = trySetRisk(s, "Researcher", "Low")
	if err == nil {
		t.Fatal("expected error on closed database")
	}
	if s.Stats() != (Stats{}) {
		t.Errorf("memory state changed after failed commit: %+v", s.Stats())
	}
}
