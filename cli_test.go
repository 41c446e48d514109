package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rorycl/roster/app"
)

// mockApp records the command invoked and its options.
type mockApp struct {
	called     string
	opts       app.Options
	snapshotID int64
	err        error
}

func (m *mockApp) Interactive(ctx context.Context, opts app.Options) error {
	m.called, m.opts = "interactive", opts
	return m.err
}

func (m *mockApp) List(ctx context.Context, opts app.Options) error {
	m.called, m.opts = "list", opts
	return m.err
}

func (m *mockApp) Archive(ctx context.Context, opts app.Options) error {
	m.called, m.opts = "archive", opts
	return m.err
}

func (m *mockApp) History(ctx context.Context, opts app.Options, snapshotID int64) error {
	m.called, m.opts, m.snapshotID = "history", opts, snapshotID
	return m.err
}

func TestBuildCLI(t *testing.T) {

	tests := []struct {
		name       string
		args       []string
		called     string
		opts       app.Options
		snapshotID int64
	}{
		{
			name:   "interactive default",
			args:   []string{"roster"},
			called: "interactive",
		},
		{
			name:   "interactive with flags",
			args:   []string{"roster", "-c", "roster.yaml", "--file", "staff.txt", "--log-level", "debug"},
			called: "interactive",
			opts:   app.Options{ConfigPath: "roster.yaml", DataFile: "staff.txt", LogLevel: "debug"},
		},
		{
			name:   "list with root flag",
			args:   []string{"roster", "--file", "staff.txt", "list"},
			called: "list",
			opts:   app.Options{DataFile: "staff.txt"},
		},
		{
			name:   "list alias with inherited flag",
			args:   []string{"roster", "ls", "--file", "staff.txt"},
			called: "list",
			opts:   app.Options{DataFile: "staff.txt"},
		},
		{
			name:   "archive",
			args:   []string{"roster", "archive", "--db", "archive.db"},
			called: "archive",
			opts:   app.Options{DatabasePath: "archive.db"},
		},
		{
			name:       "history snapshot",
			args:       []string{"roster", "history", "-d", "archive.db", "--snapshot", "3"},
			called:     "history",
			opts:       app.Options{DatabasePath: "archive.db"},
			snapshotID: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockApp{}
			if err := BuildCLI(m).Run(context.Background(), tt.args); err != nil {
				t.Fatal(err)
			}
			if got, want := m.called, tt.called; got != want {
				t.Errorf("got %s want %s", got, want)
			}
			if diff := cmp.Diff(tt.opts, m.opts); diff != "" {
				t.Errorf("options mismatch (-want +got):\n%s", diff)
			}
			if got, want := m.snapshotID, tt.snapshotID; got != want {
				t.Errorf("got %d want %d", got, want)
			}
		})
	}
}

func TestBuildCLIError(t *testing.T) {
	wantErr := errors.New("save failed")
	m := &mockApp{err: wantErr}
	err := BuildCLI(m).Run(context.Background(), []string{"roster"})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v want %v", err, wantErr)
	}
}
