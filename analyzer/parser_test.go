package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

func parseSource(t *testing.T, src string) *models.ParsedFile {
	t.Helper()
	p, err := NewParser()
	require.NoError(t, err)

	pf, err := p.ParseFile(&models.SourceFile{RelPath: "lib.rs", Name: "lib", Content: []byte(src)})
	require.NoError(t, err)
	return pf
}

func TestParseFileCommandsAndTypes(t *testing.T) {
	pf := parseSource(t, `
use tauri::{AppHandle, State};
use serde::{Deserialize, Serialize};

/// A user account.
#[derive(Debug, Serialize, Deserialize)]
pub struct User {
    /// Stable identifier.
    pub id: u64,
    pub name: String,
}

#[derive(Serialize)]
pub enum Status {
    Active,
    Suspended(String),
    Banned { until: u64 },
}

/// Fetches one user.
#[tauri::command]
pub async fn get_user(app: AppHandle, user_id: u64) -> Result<User, String> {
    app.emit("user-fetched", user_id).unwrap();
    Ok(User { id: user_id, name: String::new() })
}

fn helper() {}
`)

	assert.Equal(t, "tauri::AppHandle", pf.Aliases["AppHandle"])
	assert.Equal(t, "tauri::State", pf.Aliases["State"])
	assert.Equal(t, "serde::Serialize", pf.Aliases["Serialize"])

	require.Len(t, pf.Functions, 1, "unmarked functions are skipped")
	fn := pf.Functions[0]
	assert.Equal(t, "get_user", fn.Name)
	assert.True(t, fn.Async)
	assert.Equal(t, "Fetches one user.", fn.Doc)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "app", fn.Params[0].Name)
	assert.Equal(t, "AppHandle", fn.Params[0].Type.Path)
	assert.Equal(t, "user_id", fn.Params[1].Name)
	assert.Equal(t, "u64", fn.Params[1].Type.Path)
	require.NotNil(t, fn.Return)
	assert.Equal(t, "Result", fn.Return.Path)

	require.Len(t, pf.Types, 2)
	user := pf.Types[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, models.DeclStruct, user.Kind)
	assert.Equal(t, "A user account.", user.Doc)
	assert.True(t, user.Serializable)
	assert.True(t, user.Deserializable)
	require.Len(t, user.Fields, 2)
	assert.Equal(t, "id", user.Fields[0].Name)
	assert.Equal(t, "Stable identifier.", user.Fields[0].Doc)

	status := pf.Types[1]
	assert.Equal(t, models.DeclEnum, status.Kind)
	assert.True(t, status.Serializable)
	assert.False(t, status.Deserializable)
	require.Len(t, status.Variants, 3)
	assert.Equal(t, models.VariantUnit, status.Variants[0].Kind)
	assert.Equal(t, models.VariantTuple, status.Variants[1].Kind)
	assert.Equal(t, models.VariantStruct, status.Variants[2].Kind)
	require.Len(t, status.Variants[2].Fields, 1)
	assert.Equal(t, "until", status.Variants[2].Fields[0].Name)
}

func TestParseFileBroadcasts(t *testing.T) {
	pf := parseSource(t, `
#[tauri::command]
fn notify(app: tauri::AppHandle, window: tauri::Window, count: u32) {
    app.emit("tick", count).unwrap();
    window.emit("focus", ()).unwrap();
    app.emit_to("settings", "saved", true).unwrap();
    let name = format!("dyn-{}", count);
    app.emit(&name, count).unwrap();
}
`)

	require.Len(t, pf.Functions, 1)
	sites := pf.Functions[0].Broadcasts
	require.Len(t, sites, 4)

	assert.Equal(t, "emit", sites[0].Method)
	assert.Equal(t, "app", sites[0].Receiver)
	assert.Equal(t, "tick", sites[0].NameLit)
	assert.True(t, sites[0].NameStatic)
	assert.Equal(t, models.PayloadIdent, sites[0].Payload)
	assert.Equal(t, "count", sites[0].PayloadText)

	assert.Equal(t, "window", sites[1].Receiver)

	assert.Equal(t, "emit_to", sites[2].Method)
	assert.Equal(t, "settings", sites[2].WindowLit)
	assert.True(t, sites[2].WindowStatic)
	assert.Equal(t, "saved", sites[2].NameLit)
	assert.Equal(t, models.PayloadBoolLit, sites[2].Payload)

	assert.False(t, sites[3].NameStatic, "computed event names are flagged, not resolved")
}

func TestParseFileStructPayloadLiteral(t *testing.T) {
	pf := parseSource(t, `
#[command]
fn report(app: tauri::AppHandle) {
    app.emit("progress", Progress { done: 1, total: 10 }).unwrap();
}
`)

	require.Len(t, pf.Functions, 1)
	sites := pf.Functions[0].Broadcasts
	require.Len(t, sites, 1)
	assert.Equal(t, models.PayloadStructLit, sites[0].Payload)
	assert.Equal(t, "Progress", sites[0].PayloadText)
}

func TestParseFileUseAliases(t *testing.T) {
	pf := parseSource(t, `
use tauri::ipc::Response as IpcResponse;
use std::collections::{HashMap, BTreeMap as Tree};
`)

	assert.Equal(t, "tauri::ipc::Response", pf.Aliases["IpcResponse"])
	assert.Equal(t, "std::collections::HashMap", pf.Aliases["HashMap"])
	assert.Equal(t, "std::collections::BTreeMap", pf.Aliases["Tree"])
}

func TestParseFileSyntaxError(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)

	_, err = p.ParseFile(&models.SourceFile{
		RelPath: "broken.rs",
		Name:    "broken",
		Content: []byte("fn broken( {"),
	})
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "broken.rs", pe.File)
	assert.GreaterOrEqual(t, pe.Line, 1)
}

func TestAttributeHelpers(t *testing.T) {
	assert.True(t, hasCommandMarker([]string{"#[tauri::command]"}))
	assert.True(t, hasCommandMarker([]string{"#[command]"}))
	assert.True(t, hasCommandMarker([]string{"#[tauri::command(rename_all = \"snake_case\")]"}))
	assert.False(t, hasCommandMarker([]string{"#[derive(Serialize)]"}))
	assert.False(t, hasCommandMarker(nil))

	assert.True(t, hasDerive([]string{"#[derive(Debug, serde::Serialize)]"}, "Serialize"))
	assert.False(t, hasDerive([]string{"#[derive(Debug)]"}, "Serialize"))
}
