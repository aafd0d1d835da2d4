package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-discovery/pkg/database"
	"github.com/ekaya-inc/ekaya-discovery/pkg/drafts"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// execute runs discoveryctl with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func sampleRecord() models.DiscoveryRecord {
	rec := models.NewDiscoveryRecord()
	rec.ProjectName = "Inventory"
	rec.Entities = []models.Entity{{
		ID:   "e1",
		Name: "Order Items",
		Attributes: []models.EntityAttribute{
			{ID: "a1", Name: "qty on hand", Type: models.AttributeNumber},
		},
	}}
	rec.Flows = []models.Flow{{ID: "f1", Trigger: "Click", Action: "Save", Result: "Saved"}}
	return rec
}

func writeRecord(t *testing.T, rec models.DiscoveryRecord) string {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestBlueprint_Text(t *testing.T) {
	out, err := execute(t, "blueprint", "-f", writeRecord(t, sampleRecord()))
	require.NoError(t, err)

	assert.Contains(t, out, "Project:  Inventory (draft)")
	assert.Contains(t, out, "Estimate: Small, 5 points")
	assert.Contains(t, out, "Order_Items {")
	assert.Contains(t, out, "Number qty_on_hand")
	assert.Contains(t, out, "Trigger0[Click]")
}

func TestBlueprint_JSON(t *testing.T) {
	out, err := execute(t, "blueprint", "-f", writeRecord(t, sampleRecord()), "--format", "json")
	require.NoError(t, err)

	var got blueprintOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Inventory", got.Project)
	assert.Equal(t, 5, got.Blueprint.Estimate.Points)
	assert.True(t, strings.HasPrefix(got.Blueprint.ERDiagram, "erDiagram\n"))
}

func TestBlueprint_YAML(t *testing.T) {
	out, err := execute(t, "blueprint", "-f", writeRecord(t, sampleRecord()), "--format", "yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Inventory", got["project"])
	bp, ok := got["blueprint"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, bp["flowChart"], "graph TD")
}

func TestBlueprint_EmptyRecordShowsPlaceholders(t *testing.T) {
	out, err := execute(t, "blueprint", "-f", writeRecord(t, models.NewDiscoveryRecord()))
	require.NoError(t, err)

	assert.Contains(t, out, "Untitled project")
	assert.Contains(t, out, "(empty)")
	assert.Contains(t, out, "Gaps (")
}

func TestBlueprint_Errors(t *testing.T) {
	_, err := execute(t, "blueprint")
	assert.Error(t, err, "missing --file")

	_, err = execute(t, "blueprint", "-f", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = execute(t, "blueprint", "-f", writeRecord(t, sampleRecord()), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func seedDrafts(t *testing.T, recs ...models.DiscoveryRecord) string {
	t.Helper()
	dir := t.TempDir()
	db, err := database.OpenBadger(database.BadgerConfig{Path: dir})
	require.NoError(t, err)
	mirror := drafts.NewBadgerMirror(db, 0, zap.NewNop())
	for _, r := range recs {
		require.NoError(t, mirror.Save(context.Background(), r))
	}
	require.NoError(t, mirror.Close())
	return dir
}

func TestDrafts_ListShowClear(t *testing.T) {
	rec := sampleRecord()
	other := models.NewDiscoveryRecord()
	dir := seedDrafts(t, rec, other)

	out, err := execute(t, "drafts", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, rec.ID)
	assert.Contains(t, out, "Inventory")
	assert.Contains(t, out, "Untitled project")

	out, err = execute(t, "drafts", "show", rec.ID, "--dir", dir)
	require.NoError(t, err)
	var shown models.DiscoveryRecord
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "Order Items", shown.Entities[0].Name)

	out, err = execute(t, "drafts", "clear", rec.ID, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 draft(s).")

	_, err = execute(t, "drafts", "show", rec.ID, "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no draft with id")

	out, err = execute(t, "drafts", "clear", "--all", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 draft(s).")

	out, err = execute(t, "drafts", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No drafts.")
}

func TestDrafts_ClearNeedsIDsOrAll(t *testing.T) {
	dir := seedDrafts(t)

	_, err := execute(t, "drafts", "clear", "--dir", dir)
	assert.Error(t, err)

	_, err = execute(t, "drafts", "clear", "x", "--all", "--dir", dir)
	assert.Error(t, err)
}

func TestRender_WritesFile(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mermaid/svg", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg>flow</svg>"))
	}))
	defer server.Close()

	output := filepath.Join(t.TempDir(), "flow.svg")
	out, err := execute(t, "render", "-f", writeRecord(t, sampleRecord()), "--kind", "flow", "--url", server.URL, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "<svg>flow</svg>", string(data))
	assert.Contains(t, gotBody, "Trigger0[Click]")
}

func TestRender_Errors(t *testing.T) {
	path := writeRecord(t, sampleRecord())

	_, err := execute(t, "render", "-f", path, "--kind", "pie")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown diagram kind")

	_, err = execute(t, "render", "-f", writeRecord(t, models.NewDiscoveryRecord()), "--kind", "er")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to draw")
}
