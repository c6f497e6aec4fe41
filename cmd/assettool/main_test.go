package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/assetdecode/pkg/asset"
	"github.com/goopsie/assetdecode/pkg/config"
	"github.com/goopsie/assetdecode/pkg/container"
	"github.com/goopsie/assetdecode/pkg/model"
)

func writeAsset(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleContainer(t *testing.T) []byte {
	t.Helper()
	w := container.NewWriter()
	w.AddClass(0, "Model", false, []int32{1})
	w.AddClass(1, "Part", false, []int32{2, 3})
	w.AddStrings(0, "Name", []string{"Car"})
	w.AddStrings(1, "Name", []string{"Wheel", "Door"})
	w.AddFloats(1, "Transparency", []float32{0.5, 0})
	if err := w.AddParents([]int32{2, 3}, []int32{1, 1}); err != nil {
		t.Fatal(err)
	}
	w.AddMetadata([][2]string{{"ExplicitAutoJoints", "true"}})
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append(args, "--log-level", "error"), &stdout, &stderr)
	return stdout.String(), err
}

func TestDecodeCommand(t *testing.T) {
	path := writeAsset(t, t.TempDir(), "1234.rbxm", sampleContainer(t))

	t.Run("JSON", func(t *testing.T) {
		out, err := runTool(t, "decode", path)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		var view resultView
		if err := json.Unmarshal([]byte(out), &view); err != nil {
			t.Fatalf("unmarshal: %v\n%s", err, out)
		}
		if view.AssetID != "1234" || !view.Valid || view.Format != "Container" {
			t.Errorf("got %+v", view)
		}
		if len(view.Roots) != 1 || len(view.Roots[0].Children) != 2 {
			t.Fatalf("roots: got %+v", view.Roots)
		}
		if got := view.Roots[0].Children[1].Properties["Name"]; got != "Door" {
			t.Errorf("second child Name: got %v, want Door", got)
		}
		if view.Metadata["ExplicitAutoJoints"] != "true" {
			t.Errorf("metadata: got %v", view.Metadata)
		}
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := runTool(t, "decode", "--output", "yaml", path)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		var view resultView
		if err := yaml.Unmarshal([]byte(out), &view); err != nil {
			t.Fatalf("unmarshal: %v\n%s", err, out)
		}
		if view.Roots[0].Class != "Model" {
			t.Errorf("root class: got %q, want Model", view.Roots[0].Class)
		}
	})

	t.Run("CBOR", func(t *testing.T) {
		out, err := runTool(t, "decode", "-f", "cbor", path)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		var view resultView
		if err := cbor.Unmarshal([]byte(out), &view); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if view.AssetID != "1234" || len(view.Roots) != 1 {
			t.Errorf("got %+v", view)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		bad := writeAsset(t, t.TempDir(), "99", []byte("plain text"))
		out, err := runTool(t, "decode", bad)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		var view resultView
		if err := json.Unmarshal([]byte(out), &view); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if view.Valid || view.Error == "" || len(view.Roots) != 0 {
			t.Errorf("got %+v, want invalid result", view)
		}
	})
}

func TestTreeCommand(t *testing.T) {
	path := writeAsset(t, t.TempDir(), "1234", sampleContainer(t))
	out, err := runTool(t, "tree", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"1234", "3 instances", "Model", "#1", "Wheel", "Door", "Transparency", "@ExplicitAutoJoints = true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Wheel") > strings.Index(out, "Door") {
		t.Errorf("children out of order:\n%s", out)
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "1", sampleContainer(t))
	writeAsset(t, dir, "2", []byte("<roblox><Item class=\"Folder\" referent=\"A\"/></roblox>"))
	writeAsset(t, dir, "3", []byte{0, 1, 2})

	out, err := runTool(t, "batch", "-j", "2", dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var report batchReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if report.Total != 3 || report.Valid != 2 || report.Invalid != 1 {
		t.Errorf("counts: got %+v", report)
	}
	if report.Assets[0].Instances != 3 || report.Assets[1].Format != "Xml" {
		t.Errorf("assets: got %+v", report.Assets)
	}
	if report.Assets[2].Digest != asset.Digest([]byte{0, 1, 2}) {
		t.Errorf("digest: got %q", report.Assets[2].Digest)
	}
}

func TestMeshCommand(t *testing.T) {
	dir := t.TempDir()
	record := "[2,4,6][0,0,1][0.5,0.5,0]"
	path := writeAsset(t, dir, "mesh", []byte("version 1.00\n1\n"+strings.Repeat(record, 3)))

	out, err := runTool(t, "mesh", "--precision", "1", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "v 1.0 2.0 3.0\nvt 0.5 0.5\n") {
		t.Errorf("got %q", out)
	}

	objPath := filepath.Join(dir, "out.obj")
	if _, err := runTool(t, "mesh", "-o", objPath, path); err != nil {
		t.Fatalf("run: %v", err)
	}
	obj, err := os.ReadFile(objPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(obj), "f 1/1 2/2 3/3\n") {
		t.Errorf("obj file: got %q", obj)
	}

	bad := writeAsset(t, dir, "bad", []byte("version 9.00\n"))
	if _, err := runTool(t, "mesh", bad); err == nil || !strings.Contains(err.Error(), "Unsupported mesh version: version 9.00") {
		t.Errorf("got %v, want unsupported version error", err)
	}
}

func TestRunErrors(t *testing.T) {
	path := writeAsset(t, t.TempDir(), "1", sampleContainer(t))

	tests := []struct {
		name string
		args []string
	}{
		{"UnknownCommand", []string{"explode", path}},
		{"MissingArgument", []string{"decode"}},
		{"BadOutput", []string{"decode", "--output", "xml", path}},
		{"MissingFile", []string{"decode", filepath.Join(t.TempDir(), "absent")}},
		{"BadFlag", []string{"decode", "--nope", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runTool(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPropertyValue(t *testing.T) {
	tests := []struct {
		in   model.Value
		want any
	}{
		{model.String("x"), "x"},
		{model.Int32(-4), int32(-4)},
		{model.Bool(true), true},
		{model.Float32(1.5), float32(1.5)},
		{model.Float32(float32(math.Inf(1))), "+Inf"},
		{model.Float32(float32(math.NaN())), "NaN"},
	}
	for _, tt := range tests {
		if got := propertyValue(tt.in); got != tt.want {
			t.Errorf("propertyValue(%v): got %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
