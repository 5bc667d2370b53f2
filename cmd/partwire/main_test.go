package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/partwire"
)

const document = `
name: sensor
size: 3
tags:
  - a
  - b
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, config.Options.SortMapKeys)
	assert.Equal(t, "none", config.Frame.Compression)
	assert.Equal(t, "frames", config.Store.Bucket)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "partwire.yaml", `
options:
  sort_map_keys: false
  max_depth: 64
frame:
  enabled: true
  compression: zstd
  schema_id: 77
store:
  path: /tmp/blobs.db
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, config.Options.SortMapKeys)
	assert.Equal(t, 64, config.Options.MaxDepth)
	assert.True(t, config.Frame.Enabled)
	assert.Equal(t, "zstd", config.Frame.Compression)
	assert.Equal(t, uint64(77), config.Frame.SchemaID)
	assert.Equal(t, "/tmp/blobs.db", config.Store.Path)
	assert.Equal(t, "frames", config.Store.Bucket)
	assert.Equal(t, partwire.Options{MaxDepth: 64}, config.EncoderOptions())
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv(EnvStoreBucket, "other")
	t.Setenv(EnvCompression, "lz4")
	t.Setenv(EnvMaxDepth, "12")
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "other", config.Store.Bucket)
	assert.Equal(t, "lz4", config.Frame.Compression)
	assert.Equal(t, 12, config.Options.MaxDepth)

	t.Setenv(EnvMaxDepth, "deep")
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig("/nonexistent/partwire.yaml")
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "options: [unclosed"))
	assert.Error(t, err)

	path := writeFile(t, "invalid.yaml", `
options:
  max_depth: -1
frame:
  compression: brotli
`)
	_, err = LoadConfig(path)
	require.Error(t, err)
	var errs errsx.Map
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 2)
	assert.Contains(t, errs, "frame.compression")
	assert.Contains(t, errs, "options.max_depth")
}

func TestHeaderCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("header", []string{"3", "64"}, nil, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "3\tclass 0\t0c", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "64\tclass 1\t"))

	assert.Error(t, run("header", []string{"x"}, nil, &out))
	assert.Error(t, run("header", []string{"4611686018427387904"}, nil, &out))
}

func TestEncodeCommand(t *testing.T) {
	input := writeFile(t, "doc.yaml", document)
	doc := map[string]any{"name": "sensor", "size": 3, "tags": []any{"a", "b"}}

	var out bytes.Buffer
	require.NoError(t, run("encode", []string{input}, nil, &out))
	want, err := partwire.NewEncoder(partwire.Options{SortMapKeys: true}).Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want)+"\n", out.String())

	out.Reset()
	require.NoError(t, run("encode", []string{"-select", "/size", "-select", "/name", "-"}, strings.NewReader(document), &out))
	want, err = partwire.MarshalPartial(doc, "/size", "/name")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want)+"\n", out.String())

	err = run("encode", []string{"-select", "/missing", input}, nil, &out)
	assert.ErrorIs(t, err, partwire.ErrMissingMapKey)
	err = run("encode", []string{"-select", "/tags/0", input}, nil, &out)
	assert.ErrorIs(t, err, partwire.ErrUnsupportedPartialTarget)
}

func TestEncodeCommandIntegerKeys(t *testing.T) {
	input := writeFile(t, "codes.yaml", "200: ok\n404: missing\n")
	var out bytes.Buffer
	require.NoError(t, run("encode", []string{"-select", "/404", input}, nil, &out))
	want, err := partwire.MarshalPartial(map[any]any{200: "ok", 404: "missing"}, "/404")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want)+"\n", out.String())
}

func TestStoreAndGet(t *testing.T) {
	t.Setenv(EnvStorePath, filepath.Join(t.TempDir(), "store.db"))
	input := writeFile(t, "doc.yaml", document)

	var out bytes.Buffer
	require.NoError(t, run("encode", []string{"-codec", "s2", "-select", "/tags", "-store", "doc", input}, nil, &out))
	assert.Empty(t, out.String())

	require.NoError(t, run("get", []string{"doc"}, nil, &out))
	want, err := partwire.MarshalPartial(map[string]any{"tags": []any{"a", "b"}}, "/tags")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "codec: s2\n")
	assert.Contains(t, out.String(), "partial: true\n")
	assert.Contains(t, out.String(), "payload: "+hex.EncodeToString(want)+"\n")

	assert.Error(t, run("get", []string{"-store", "nope"}, nil, &out))
}

func TestUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run("bogus", nil, nil, &out))
	require.NoError(t, run("version", nil, nil, &out))
	assert.Equal(t, "partwire "+version+"\n", out.String())
}
