package app

import (
	"errors"
	"os"
	"testing"

	"timeloop/internal/config"
	"timeloop/internal/store"
)

type recordingPlugin struct {
	name  string
	calls *[]string
	err   error
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) Setup(a *App) error {
	*p.calls = append(*p.calls, p.name)
	return p.err
}

func TestBootstrapRunsPluginsInOrder(t *testing.T) {
	var calls []string
	a, err := NewBuilder().
		Plugin(&recordingPlugin{name: "first", calls: &calls}).
		Plugin(&recordingPlugin{name: "second", calls: &calls}).
		Plugin(&recordingPlugin{name: "third", calls: &calls}).
		Bootstrap()
	if err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	defer a.Close()

	want := []string{"first", "second", "third"}
	if len(calls) != len(want) {
		t.Fatalf("got %d plugin calls, want %d", len(calls), len(want))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestBootstrapStopsOnPluginFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	_, err := NewBuilder().
		Plugin(&recordingPlugin{name: "first", calls: &calls}).
		Plugin(&recordingPlugin{name: "broken", calls: &calls, err: boom}).
		Plugin(&recordingPlugin{name: "never", calls: &calls}).
		Bootstrap()
	if !errors.Is(err, boom) {
		t.Fatalf("Bootstrap() error = %v, want wrapped %v", err, boom)
	}
	if len(calls) != 2 {
		t.Errorf("got %d plugin calls before abort, want 2", len(calls))
	}
}

func TestBootstrapWithSQLPlugin(t *testing.T) {
	dataDir := t.TempDir()

	a, err := NewBuilder().
		WithConfig(config.Config{DataDir: dataDir}).
		Plugin(NewSQLPlugin()).
		Bootstrap()
	if err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	defer a.Close()

	if a.Store == nil {
		t.Fatal("Store should be set after bootstrap")
	}

	if _, err := os.Stat(store.DBPath(dataDir)); err != nil {
		t.Errorf("store file not created: %v", err)
	}

	state, err := a.Store.CheckState()
	if err != nil {
		t.Fatalf("CheckState() error: %v", err)
	}
	if state != store.StateReady {
		t.Errorf("state = %v, want %v", state, store.StateReady)
	}
	if err := a.Store.Verify(); err != nil {
		t.Errorf("Verify() error: %v", err)
	}
}

func TestBootstrapWithSQLPluginIsIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.Config{DataDir: dataDir}

	for i := 0; i < 2; i++ {
		a, err := NewBuilder().
			WithConfig(cfg).
			Plugin(NewSQLPlugin()).
			Bootstrap()
		if err != nil {
			t.Fatalf("bootstrap %d error: %v", i+1, err)
		}

		version, err := a.Store.SchemaVersion()
		if err != nil {
			t.Fatalf("SchemaVersion() error: %v", err)
		}
		if version != 1 {
			t.Errorf("bootstrap %d: schema version = %d, want 1", i+1, version)
		}
		a.Close()
	}
}
