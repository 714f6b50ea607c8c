package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/funnelkit/pkg/editor"
	"github.com/matzehuels/funnelkit/pkg/storage"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

func TestRootCommandTree(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()

	groups := map[string]string{
		"add": groupEdit, "connect": groupEdit, "disconnect": groupEdit, "delete": groupEdit,
		"label": groupEdit, "clear": groupEdit, "import": groupEdit, "edit": groupEdit,
		"templates": groupOutput, "show": groupOutput, "validate": groupOutput,
		"export": groupOutput, "render": groupOutput, "serve": groupOutput,
		"storage": "", "completion": "",
	}
	for name, group := range groups {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
			continue
		}
		if cmd.GroupID != group {
			t.Errorf("%s group = %q, want %q", name, cmd.GroupID, group)
		}
	}

	for _, flag := range []string{"config", "workspace"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

// testWorkspace writes a config with file storage under a temp dir.
func testWorkspace(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	dir = filepath.Join(t.TempDir(), "data")
	cfgPath = writeConfig(t, "workspace = \"test\"\n[storage]\nbackend = \"file\"\ndir = '"+dir+"'\n")
	return cfgPath, dir
}

func runCLI(t *testing.T, cfgPath string, args ...string) error {
	t.Helper()
	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func openTestSession(t *testing.T, dir string) *editor.Session {
	t.Helper()
	fs, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	s, err := editor.Open(context.Background(), fs, editor.Options{Workspace: "test", Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommandsRoundTrip(t *testing.T) {
	cfg, dir := testWorkspace(t)

	mustRun := func(args ...string) {
		t.Helper()
		if err := runCLI(t, cfg, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	mustRun("add", "salesPage")
	mustRun("add", "upsell", "--x", "200")
	mustRun("add", "thankYou", "--x", "400")
	mustRun("connect", "sales page", "Upsell 1")
	mustRun("connect", "Upsell 1", "Thank You")

	err := runCLI(t, cfg, "connect", "Thank You", "Sales Page")
	var exit *ExitError
	if !stderrors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("connecting from a thank-you page: err = %v, want exit status 1", err)
	}

	mustRun("validate")

	s := openTestSession(t, dir)
	v := s.View()
	if len(v.Nodes) != 3 || len(v.Edges) != 2 {
		t.Fatalf("saved funnel has %d nodes, %d edges", len(v.Nodes), len(v.Edges))
	}
	if v.Status != validate.StatusClean {
		t.Errorf("status = %s, want clean", v.Status)
	}
	if n := v.Nodes[1]; n.Position.X != 200 {
		t.Errorf("upsell position = %+v", n.Position)
	}
	s.Close()

	out := filepath.Join(t.TempDir(), "funnel.json")
	mustRun("export", out)
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("export did not write %s: %v", out, err)
	}

	if err := runCLI(t, cfg, "clear"); !stderrors.As(err, &exit) {
		t.Errorf("clear without --yes: err = %v, want exit error", err)
	}
	mustRun("clear", "--yes")
	mustRun("add", "upsell")

	mustRun("import", out)
	s = openTestSession(t, dir)
	if got := len(s.View().Nodes); got != 3 {
		t.Errorf("after import: %d nodes, want 3", got)
	}
	mustRun("add", "upsell")
	s.Close()
	s = openTestSession(t, dir)
	nodes := s.View().Nodes
	if last := nodes[len(nodes)-1]; last.Label() != "Upsell 3" {
		t.Errorf("next upsell after import = %q, want Upsell 3", last.Label())
	}
}

func TestValidateCommandFailsOnErrors(t *testing.T) {
	cfg, _ := testWorkspace(t)

	// A lone order page is orphaned, which is an error.
	if err := runCLI(t, cfg, "add", "orderPage"); err != nil {
		t.Fatal(err)
	}
	err := runCLI(t, cfg, "validate")
	var exit *ExitError
	if !stderrors.As(err, &exit) {
		t.Errorf("validate err = %v, want exit error", err)
	}
}

func TestValidateCommandFile(t *testing.T) {
	cfg, _ := testWorkspace(t)
	path := filepath.Join(t.TempDir(), "doc.json")
	body := `{"nodes":[{"id":"s","position":{"x":0,"y":0},"data":{"label":"Sales Page","type":"salesPage"}}],"edges":[]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	// One warning, no errors.
	if err := runCLI(t, cfg, "validate", path); err != nil {
		t.Errorf("validate %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte(`{"nodes":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, cfg, "validate", path); err == nil {
		t.Error("validate accepted a document without edges")
	}
}

func TestWorkspaceFlag(t *testing.T) {
	cfg, dir := testWorkspace(t)

	if err := runCLI(t, cfg, "--workspace", "other", "add", "salesPage"); err != nil {
		t.Fatal(err)
	}
	if got := len(openTestSession(t, dir).View().Nodes); got != 0 {
		t.Errorf("default workspace has %d nodes, want 0", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "other", "graph.json")); err != nil {
		t.Errorf("other workspace not saved: %v", err)
	}
}
