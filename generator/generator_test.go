package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauria/tauria-tsgen/analyzer/models"
	"github.com/tauria/tauria-tsgen/render"
)

func knownNamed(name string) *models.TypeDescriptor {
	d := models.Named(name)
	d.Known = true
	return d
}

func testModel() *models.Model {
	user := &models.TypeDeclaration{
		Name:           "User",
		Module:         "User",
		Kind:           models.DeclStruct,
		Doc:            "A user account.",
		Serializable:   true,
		Deserializable: true,
		Fields: []models.Field{
			{Name: "id", Doc: "Stable identifier.", Type: models.Primitive("number")},
			{Name: "name", Type: models.Primitive("string")},
		},
	}

	cmd := &models.CommandFunction{
		Name:   "get_user",
		Doc:    "Fetches one user.",
		Module: "User",
		Params: []models.Parameter{
			{Name: "user_id", Type: models.Primitive("number")},
		},
		Return: knownNamed("User"),
	}

	node := &models.ModuleNode{
		Segment:  "User",
		Source:   &models.SourceFile{RelPath: "user.rs", Name: "user"},
		Commands: []*models.CommandFunction{cmd},
		Types:    []*models.TypeDeclaration{user},
	}

	return &models.Model{
		Root:  &models.ModuleNode{Children: []*models.ModuleNode{node}},
		Types: []*models.TypeDeclaration{user},
		Events: []*models.EventSite{
			{Name: "user-updated", Key: "user-updated", Payload: knownNamed("User"), Scope: models.GlobalScope()},
			{Name: "closed", Key: "closed", Payload: models.Void(), Scope: models.WindowScope("settings")},
		},
		Report: models.NewReport(),
	}
}

func generate(t *testing.T, model *models.Model, opts Options) map[string]string {
	t.Helper()
	renderer, err := render.NewTemplateRenderer()
	require.NoError(t, err)

	artifacts, err := NewGenerator(renderer).Generate(model, opts)
	require.NoError(t, err)

	out := map[string]string{}
	for _, a := range artifacts {
		out[a.RelPath] = a.Content
	}
	return out
}

func TestGenerateArtifactPaths(t *testing.T) {
	out := generate(t, testModel(), Options{})

	expected := []string{
		"tauria-api/User.ts",
		"interface/commands/User.ts",
		"interface/types/index.ts",
		"tauria-api/events/GlobalEventHandlers.ts",
		"tauria-api/events/SettingsWindowEventHandlers.ts",
		"tauria-api/index.ts",
		"interface/index.ts",
		"index.ts",
	}
	for _, p := range expected {
		assert.Contains(t, out, p)
	}
	assert.NotContains(t, out, "mock-api/User.ts")
	assert.Len(t, out, len(expected))
}

func TestGenerateMockAPI(t *testing.T) {
	out := generate(t, testModel(), Options{MockAPI: true})

	mock, ok := out["mock-api/User.ts"]
	require.True(t, ok)
	assert.Contains(t, mock, `throw new Error("mock not implemented: get_user");`)
	assert.Contains(t, out, "mock-api/index.ts")
	assert.Contains(t, out["index.ts"], `export * from "./mock-api";`)
}

func TestGenerateWrapper(t *testing.T) {
	out := generate(t, testModel(), Options{})
	wrapper := out["tauria-api/User.ts"]

	assert.Contains(t, wrapper, `import { invoke } from "@tauri-apps/api/core";`)
	assert.Contains(t, wrapper, `import * as T from "../interface/types";`)
	assert.Contains(t, wrapper, "export async function getUser(userId: number): Promise<T.User> {")
	assert.Contains(t, wrapper, `return await invoke("get_user", { userId });`)
	assert.Contains(t, wrapper, "* Fetches one user.")
}

func TestGenerateInterface(t *testing.T) {
	out := generate(t, testModel(), Options{})
	iface := out["interface/commands/User.ts"]

	assert.Contains(t, iface, `import * as T from "../types";`)
	assert.Contains(t, iface, "export interface User {")
	assert.Contains(t, iface, "getUser(userId: number): Promise<T.User>;")
}

func TestGenerateTypesIndex(t *testing.T) {
	out := generate(t, testModel(), Options{})
	types := out["interface/types/index.ts"]

	assert.Contains(t, types, "export interface User {")
	assert.Contains(t, types, "id: number;")
	assert.Contains(t, types, "name: string;")
	assert.Contains(t, types, "* A user account.")
	assert.Contains(t, types, "* Stable identifier.")
}

func TestGenerateEventHandlers(t *testing.T) {
	out := generate(t, testModel(), Options{})

	global := out["tauria-api/events/GlobalEventHandlers.ts"]
	assert.Contains(t, global, `import { listen, type UnlistenFn } from "@tauri-apps/api/event";`)
	assert.Contains(t, global, "export interface GlobalEventCallbacks {")
	assert.Contains(t, global, "onUserUpdated?: (payload: T.User) => void;")
	assert.Contains(t, global, `await listen<T.User>("user-updated"`)
	assert.Contains(t, global, "export async function attachGlobalEventHandlers(callbacks: GlobalEventCallbacks): Promise<() => void> {")

	window := out["tauria-api/events/SettingsWindowEventHandlers.ts"]
	assert.Contains(t, window, "export interface SettingsWindowEventCallbacks {")
	assert.Contains(t, window, "onClosed?: () => void;")
	assert.Contains(t, window, "attachSettingsWindowEventHandlers")
}

func TestGenerateBarrels(t *testing.T) {
	out := generate(t, testModel(), Options{})

	assert.Contains(t, out["tauria-api/index.ts"], `export * as User from "./User";`)
	assert.Contains(t, out["tauria-api/index.ts"], `export * from "./events/GlobalEventHandlers";`)
	assert.Contains(t, out["interface/index.ts"], `export type { User } from "./commands/User";`)
	assert.Contains(t, out["interface/index.ts"], `export * from "./types";`)
	assert.Contains(t, out["index.ts"], `export * from "./tauria-api";`)
	assert.Contains(t, out["index.ts"], `// export * from "./mock-api";`)
}

func TestGenerateNestedModulePaths(t *testing.T) {
	cmd := &models.CommandFunction{Name: "list_users", Module: "UserCommands", Return: models.Void()}
	node := &models.ModuleNode{
		Segment:  "UserCommands",
		Source:   &models.SourceFile{RelPath: "api/v1/user_commands.rs", Segments: []string{"api", "v1"}, Name: "user_commands"},
		Commands: []*models.CommandFunction{cmd},
	}
	dir := &models.ModuleNode{Segment: "v1", Children: []*models.ModuleNode{node}}
	model := &models.Model{
		Root:   &models.ModuleNode{Children: []*models.ModuleNode{{Segment: "api", Children: []*models.ModuleNode{dir}}}},
		Report: models.NewReport(),
	}

	out := generate(t, model, Options{})

	wrapper, ok := out["tauria-api/api/v1/UserCommands.ts"]
	require.True(t, ok)
	assert.NotContains(t, wrapper, "import * as T", "no named types, no types import")

	assert.Contains(t, out, "interface/commands/api/v1/UserCommands.ts")
	assert.Contains(t, out["tauria-api/index.ts"], `export * as UserCommands from "./api/v1/UserCommands";`)
}

func TestGenerateSkipsCommandlessModules(t *testing.T) {
	typeOnly := &models.ModuleNode{
		Segment: "Types",
		Source:  &models.SourceFile{RelPath: "types.rs", Name: "types"},
		Types:   []*models.TypeDeclaration{{Name: "User", Module: "Types", Serializable: true}},
	}
	model := &models.Model{
		Root:   &models.ModuleNode{Children: []*models.ModuleNode{typeOnly}},
		Types:  typeOnly.Types,
		Report: models.NewReport(),
	}

	out := generate(t, model, Options{})
	assert.NotContains(t, out, "tauria-api/Types.ts")
	assert.Contains(t, out["interface/types/index.ts"], "export interface User {")
}
