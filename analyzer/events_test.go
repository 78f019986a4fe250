package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

func parsedFileWithBroadcasts(fns ...*models.ParsedFunction) *models.ParsedFile {
	return &models.ParsedFile{
		File:      &models.SourceFile{RelPath: "lib.rs", Name: "lib"},
		Aliases:   map[string]string{"AppHandle": "tauri::AppHandle", "Window": "tauri::Window"},
		Functions: fns,
	}
}

func TestDetectEventsScopes(t *testing.T) {
	pf := parsedFileWithBroadcasts(&models.ParsedFunction{
		Name: "run",
		Params: []models.ParsedParam{
			{Name: "app", Type: &models.TypeExpr{Path: "AppHandle"}},
			{Name: "window", Type: &models.TypeExpr{Path: "Window"}},
		},
		Broadcasts: []models.RawBroadcast{
			{Method: "emit", Receiver: "app", NameLit: "tick", NameStatic: true, Payload: models.PayloadNone},
			{Method: "emit", Receiver: "window", NameLit: "focus", NameStatic: true, Payload: models.PayloadNone},
			{Method: "emit_to", Receiver: "app", WindowLit: "settings", WindowStatic: true, NameLit: "saved", NameStatic: true, Payload: models.PayloadNone},
		},
	})

	report := models.NewReport()
	sites := detectEvents(pf, report)
	require.Len(t, sites, 3)

	assert.True(t, sites[0].Scope.Global())
	assert.Equal(t, "tick", sites[0].Name)

	assert.Equal(t, "window", sites[1].Scope.Window)
	assert.Equal(t, "settings", sites[2].Scope.Window)
	assert.Empty(t, report.Diagnostics())
}

func TestDetectEventsSkipsComputedNames(t *testing.T) {
	pf := parsedFileWithBroadcasts(&models.ParsedFunction{
		Name: "run",
		Params: []models.ParsedParam{
			{Name: "app", Type: &models.TypeExpr{Path: "AppHandle"}},
		},
		Broadcasts: []models.RawBroadcast{
			{Method: "emit", Receiver: "app", NameStatic: false},
			{Method: "emit_to", Receiver: "app", WindowStatic: false, NameLit: "saved", NameStatic: true},
		},
	})

	report := models.NewReport()
	sites := detectEvents(pf, report)

	assert.Empty(t, sites)
	assert.Equal(t, 2, report.CountKind(models.UnstaticEventName))
	assert.False(t, report.HasErrors())
}

func TestDetectEventsSkipsUnknownReceivers(t *testing.T) {
	pf := parsedFileWithBroadcasts(&models.ParsedFunction{
		Name: "run",
		Params: []models.ParsedParam{
			{Name: "tx", Type: &models.TypeExpr{Path: "Sender", Args: []*models.TypeExpr{{Path: "u8"}}}},
		},
		Broadcasts: []models.RawBroadcast{
			{Method: "emit", Receiver: "tx", NameLit: "noise", NameStatic: true},
			{Method: "emit", Receiver: "missing", NameLit: "noise", NameStatic: true},
		},
	})

	report := models.NewReport()
	assert.Empty(t, detectEvents(pf, report))
}

func TestDetectEventsPayloads(t *testing.T) {
	pf := parsedFileWithBroadcasts(&models.ParsedFunction{
		Name: "run",
		Params: []models.ParsedParam{
			{Name: "app", Type: &models.TypeExpr{Path: "AppHandle"}},
			{Name: "count", Type: &models.TypeExpr{Path: "u32"}},
		},
		Broadcasts: []models.RawBroadcast{
			{Method: "emit", Receiver: "app", NameLit: "count", NameStatic: true, Payload: models.PayloadIdent, PayloadText: "count"},
			{Method: "emit", Receiver: "app", NameLit: "update", NameStatic: true, Payload: models.PayloadStructLit, PayloadText: "Progress"},
			{Method: "emit", Receiver: "app", NameLit: "label", NameStatic: true, Payload: models.PayloadStrLit},
			{Method: "emit", Receiver: "app", NameLit: "done", NameStatic: true, Payload: models.PayloadNone},
		},
	})

	report := models.NewReport()
	sites := detectEvents(pf, report)
	require.Len(t, sites, 4)

	assert.True(t, models.Primitive("number").Equal(sites[0].Payload))
	assert.True(t, models.Named("Progress").Equal(sites[1].Payload))
	assert.True(t, models.Primitive("string").Equal(sites[2].Payload))
	assert.True(t, models.Void().Equal(sites[3].Payload))
}

func TestMergeEventsIdenticalPayloads(t *testing.T) {
	sites := []*models.EventSite{
		{Name: "tick", Key: "tick", Payload: models.Primitive("number"), Scope: models.GlobalScope(), File: "a.rs"},
		{Name: "tick", Key: "tick", Payload: models.Primitive("number"), Scope: models.GlobalScope(), File: "b.rs"},
	}

	report := models.NewReport()
	merged := mergeEvents(sites, report)

	require.Len(t, merged, 1)
	assert.Equal(t, "a.rs", merged[0].File, "first discovery wins")
	assert.Empty(t, report.Diagnostics())
}

func TestMergeEventsPayloadCollision(t *testing.T) {
	sites := []*models.EventSite{
		{Name: "tick", Key: "tick", Payload: models.Primitive("number"), Scope: models.GlobalScope(), File: "a.rs"},
		{Name: "tick", Key: "tick", Payload: models.Primitive("string"), Scope: models.GlobalScope(), File: "b.rs"},
	}

	report := models.NewReport()
	merged := mergeEvents(sites, report)

	require.Len(t, merged, 2)
	assert.Equal(t, "tick", merged[0].Key)
	assert.Equal(t, "tick#2", merged[1].Key)
	assert.Equal(t, 1, report.CountKind(models.NameCollision))
}

func TestMergeEventsScopesAreIndependent(t *testing.T) {
	sites := []*models.EventSite{
		{Name: "tick", Key: "tick", Payload: models.Void(), Scope: models.GlobalScope()},
		{Name: "tick", Key: "tick", Payload: models.Void(), Scope: models.WindowScope("main")},
	}

	report := models.NewReport()
	merged := mergeEvents(sites, report)

	require.Len(t, merged, 2)
	assert.Empty(t, report.Diagnostics())
}
