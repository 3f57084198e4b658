package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/extension"
	"github.com/spaghettifunk/sourcery/sourcery/metadata"
	"github.com/spaghettifunk/sourcery/sourcery/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0, 1, 2, 3]}],
  "nodes": [
    {"name": "Crate", "mesh": 0},
    {"name": "Floor", "mesh": 1},
    {"name": "Untagged"},
    {"name": "Decal", "mesh": 1}
  ],
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0, "COLOR_0": 1, "COLOR_1": 2, "COLOR_2": 3}}]},
    {"primitives": [{"attributes": {"POSITION": 0, "COLOR_0": 4}}]}
  ],
  "accessors": [
    {"componentType": 5126, "count": 0, "type": "VEC3"},
    {"name": "Color", "componentType": 5126, "count": 0, "type": "VEC4"},
    {"name": "Color.001", "componentType": 5126, "count": 0, "type": "VEC4"},
    {"name": "Color.002", "componentType": 5126, "count": 0, "type": "VEC4"},
    {"name": "Color", "componentType": 5126, "count": 0, "type": "VEC4"}
  ]
}`

const sidecar = `
[collections.Props]
collision_mode = "BOX"
cdmaterials = ["models/props/"]

[objects.Crate]
collision_mode = "HULL"
visible = false
color_attributes = ["Paint", "Dirt"]

[objects.Floor]
color_attributes = ["Tint"]

[objects.Decal]
collision_mode = "NONE"
`

func loadFixture(t *testing.T) *gltf.Document {
	t.Helper()
	doc := new(gltf.Document)
	require.NoError(t, gltf.NewDecoder(strings.NewReader(fixture)).Decode(doc))
	return doc
}

func loadScene(t *testing.T) *scene.Store {
	t.Helper()
	s, err := scene.Decode(strings.NewReader(sidecar))
	require.NoError(t, err)
	return s
}

func encode(t *testing.T, doc *gltf.Document) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = false
	require.NoError(t, enc.Encode(doc))
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })
	return &buf
}

func TestGatherCollection(t *testing.T) {
	hooks := NewHooks(loadScene(t))
	doc := loadFixture(t)

	require.True(t, hooks.GatherCollection(Settings{Collection: "Props"}, doc))
	out := encode(t, doc)
	ext := out["extensions"].(map[string]interface{})[extension.Name]
	assert.Equal(t, map[string]interface{}{
		"$scale":       40.0,
		"$collision":   "box",
		"$cdmaterials": []interface{}{"models/props/"},
	}, ext)
}

func TestGatherCollection_Absent(t *testing.T) {
	hooks := NewHooks(loadScene(t))
	doc := loadFixture(t)

	assert.False(t, hooks.GatherCollection(Settings{Collection: "Nope"}, doc))
	assert.False(t, hooks.GatherCollection(Settings{}, doc))
	assert.NotContains(t, doc.Extensions, extension.Name)
}

func TestGatherNode(t *testing.T) {
	hooks := NewHooks(loadScene(t))
	doc := loadFixture(t)

	assert.True(t, hooks.GatherNode(doc.Nodes[0]))
	assert.False(t, hooks.GatherNode(doc.Nodes[1]), "empty metadata")
	assert.False(t, hooks.GatherNode(doc.Nodes[2]), "no metadata")
	assert.True(t, hooks.GatherNode(doc.Nodes[3]))

	p, err := extension.FromExtension(doc.Nodes[0].Extensions[extension.Name])
	require.NoError(t, err)
	assert.Equal(t, "hull", p.Collision)
	require.NotNil(t, p.Visible)
	assert.False(t, *p.Visible)
	assert.NotContains(t, doc.Nodes[1].Extensions, extension.Name)
}

func TestRelabelColorAttributes(t *testing.T) {
	hooks := NewHooks(loadScene(t))
	doc := loadFixture(t)

	// three exported slots for two source attributes: COLOR_0 is the extra one
	assert.Equal(t, 2, hooks.RelabelColorAttributes(doc, doc.Nodes[0]))
	assert.Equal(t, "Color", doc.Accessors[1].Name)
	assert.Equal(t, "Paint", doc.Accessors[2].Name)
	assert.Equal(t, "Dirt", doc.Accessors[3].Name)

	// counts match, no offset
	assert.Equal(t, 1, hooks.RelabelColorAttributes(doc, doc.Nodes[1]))
	assert.Equal(t, "Tint", doc.Accessors[4].Name)

	assert.Equal(t, 0, hooks.RelabelColorAttributes(doc, doc.Nodes[2]))
	assert.Equal(t, 0, hooks.RelabelColorAttributes(doc, doc.Nodes[3]))
}

func TestRelabelColorAttributes_SharedAccessor(t *testing.T) {
	s, err := scene.Decode(strings.NewReader(sidecar + "color_attributes = [\"Grime\"]\n"))
	require.NoError(t, err)
	logs := captureLog(t)

	r := New(s, Settings{Collection: "Props"}).Process(loadFixture(t))
	assert.Equal(t, 4, r.ColorSlots)
	assert.Contains(t, logs.String(), "accessor 4 is shared")
	assert.Contains(t, logs.String(), "from 'Tint' to 'Grime'")

	logs.Reset()
	New(loadScene(t), Settings{Collection: "Props"}).Process(loadFixture(t))
	assert.NotContains(t, logs.String(), "is shared")
}

func TestProcess_Idempotent(t *testing.T) {
	e := New(loadScene(t), Settings{Collection: "Props"})
	doc := loadFixture(t)

	first := e.Process(doc)
	assert.Equal(t, Report{Collection: true, Nodes: 2, ColorSlots: 3}, first)
	once := encode(t, doc)

	second := e.Process(doc)
	assert.Equal(t, first, second)
	assert.Equal(t, once, encode(t, doc))
	assert.Equal(t, []string{extension.Name}, doc.ExtensionsUsed)
}

func TestProcess_NothingToAttach(t *testing.T) {
	e := New(scene.NewStore(), Settings{Collection: "Props"})
	doc := loadFixture(t)

	r := e.Process(doc)
	assert.Equal(t, Report{}, r)
	assert.Empty(t, doc.ExtensionsUsed)
}

func TestProcess_StripsStaleBlocks(t *testing.T) {
	s := loadScene(t)
	doc := loadFixture(t)
	New(s, Settings{Collection: "Props"}).Process(doc)
	require.Contains(t, doc.Nodes[3].Extensions, extension.Name)

	s.ClearTags([]string{"Decal"})
	r := New(s, Settings{Collection: "Props"}).Process(doc)
	assert.Equal(t, 1, r.Nodes)
	assert.NotContains(t, doc.Nodes[3].Extensions, extension.Name)
}

func TestExportAndInspect(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gltf")
	require.NoError(t, os.WriteFile(in, []byte(fixture), 0o644))

	e := New(loadScene(t), Settings{Collection: "Props"}, WithGameDir(dir))
	for _, out := range []string{filepath.Join(dir, "out.gltf"), filepath.Join(dir, "out.glb")} {
		r, err := e.Export(in, out)
		require.NoError(t, err)
		assert.True(t, r.Collection)

		ins, err := InspectFile(out)
		require.NoError(t, err)
		require.NotNil(t, ins.Collection)
		assert.Equal(t, "box", ins.Collection.Collision)
		assert.Equal(t, []string{"models/props/"}, ins.Collection.CDMaterials)
		assert.Len(t, ins.Nodes, 2)
		assert.Equal(t, "none", ins.Nodes["Decal"].Collision)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), entry.Name())
	}
}

func TestExport_CDMaterialsCheck(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gltf")
	out := filepath.Join(dir, "out.gltf")
	require.NoError(t, os.WriteFile(in, []byte(fixture), 0o644))
	logs := captureLog(t)

	e := New(loadScene(t), Settings{Collection: "Props"}, WithGameDir(dir))
	_, err := e.Export(in, out)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "cdmaterials path 'models/props/' not found")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "materials", "models", "props"), 0o755))
	logs.Reset()
	_, err = e.Export(in, out)
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "cdmaterials path")
}

func TestExport_MissingInput(t *testing.T) {
	e := New(scene.NewStore(), Settings{})
	_, err := e.Export(filepath.Join(t.TempDir(), "missing.gltf"), "out.gltf")
	assert.Error(t, err)
}

func TestInspect_RoundTrip(t *testing.T) {
	s := loadScene(t)
	doc := loadFixture(t)
	New(s, Settings{Collection: "Props"}).Process(doc)

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = false
	require.NoError(t, enc.Encode(doc))
	decoded := new(gltf.Document)
	require.NoError(t, gltf.NewDecoder(&buf).Decode(decoded))

	ins, err := Inspect(decoded)
	require.NoError(t, err)

	got := metadata.NewCollectionMetadata()
	require.NoError(t, extension.ApplyCollection(ins.Collection, got))
	want, _ := s.Collection("Props")
	assert.Equal(t, want, got)

	crate := metadata.NewObjectMetadata()
	require.NoError(t, extension.ApplyObject(ins.Nodes["Crate"], crate))
	wantCrate, _ := s.ObjectMetadata("Crate")
	assert.Equal(t, wantCrate, crate)
}

func TestInspect_DuplicateNames(t *testing.T) {
	doc := loadFixture(t)
	doc.Nodes[3].Name = "Crate"
	doc.Nodes[2].Name = ""
	for _, node := range doc.Nodes {
		node.Extensions = gltf.Extensions{extension.Name: &extension.Payload{Collision: "box"}}
	}

	ins, err := Inspect(doc)
	require.NoError(t, err)
	assert.Len(t, ins.Nodes, 4)
	assert.Contains(t, ins.Nodes, "Crate")
	assert.Contains(t, ins.Nodes, "Floor")
	assert.Contains(t, ins.Nodes, "#2")
	assert.Contains(t, ins.Nodes, "Crate#3")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("GLB")
	require.NoError(t, err)
	assert.Equal(t, FormatGLB, f)

	_, err = ParseFormat("fbx")
	assert.Error(t, err)
}
