package main

import (
	"math"

	"github.com/goopsie/assetdecode/pkg/asset"
	"github.com/goopsie/assetdecode/pkg/model"
)

// nodeView is the serialised form of one instance and its subtree.
type nodeView struct {
	Class      string         `json:"class" yaml:"class"`
	Reference  string         `json:"reference" yaml:"reference"`
	Service    bool           `json:"service,omitempty" yaml:"service,omitempty"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []nodeView     `json:"children,omitempty" yaml:"children,omitempty"`
}

// resultView is the serialised form of one decode.
type resultView struct {
	AssetID  string            `json:"asset_id" yaml:"asset_id"`
	Format   string            `json:"format,omitempty" yaml:"format,omitempty"`
	Valid    bool              `json:"valid" yaml:"valid"`
	Size     int               `json:"size" yaml:"size"`
	Digest   string            `json:"digest,omitempty" yaml:"digest,omitempty"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Roots    []nodeView        `json:"roots" yaml:"roots"`
}

// propertyValue converts a value for encoding. Non-finite floats become
// strings since JSON cannot carry them.
func propertyValue(v model.Value) any {
	if f, ok := v.Float32(); ok {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return v.String()
		}
	}
	return v.Interface()
}

func newNodeView(f *model.Forest, h model.Handle) nodeView {
	inst := f.Node(h)
	view := nodeView{
		Class:     inst.ClassName,
		Reference: inst.Reference,
		Service:   inst.IsService,
	}
	if len(inst.Properties) > 0 {
		view.Properties = make(map[string]any, len(inst.Properties))
		for name, v := range inst.Properties {
			view.Properties[name] = propertyValue(v)
		}
	}
	for _, child := range inst.Children {
		view.Children = append(view.Children, newNodeView(f, child))
	}
	return view
}

func formatName(res asset.Result) string {
	if res.Format == asset.FormatNone {
		return ""
	}
	return res.Format.String()
}

func newResultView(res asset.Result) resultView {
	view := resultView{
		AssetID: res.AssetID,
		Format:  formatName(res),
		Valid:   res.Valid,
		Size:    res.Size,
		Digest:  res.Digest,
		Roots:   []nodeView{},
	}
	if res.Err != nil {
		view.Error = res.Err.Error()
	}
	if res.Root != nil {
		view.Metadata = res.Root.Metadata
		for _, h := range res.Root.Roots() {
			view.Roots = append(view.Roots, newNodeView(res.Root, h))
		}
	}
	return view
}

type assetSummary struct {
	AssetID   string `json:"asset_id" yaml:"asset_id"`
	Format    string `json:"format,omitempty" yaml:"format,omitempty"`
	Valid     bool   `json:"valid" yaml:"valid"`
	Instances int    `json:"instances" yaml:"instances"`
	Size      int    `json:"size" yaml:"size"`
	Digest    string `json:"digest,omitempty" yaml:"digest,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// batchReport summarises a batch decode without the trees themselves.
type batchReport struct {
	Total   int            `json:"total" yaml:"total"`
	Valid   int            `json:"valid" yaml:"valid"`
	Invalid int            `json:"invalid" yaml:"invalid"`
	Assets  []assetSummary `json:"assets" yaml:"assets"`
}

func newBatchReport(results []asset.Result) batchReport {
	report := batchReport{Total: len(results), Assets: make([]assetSummary, 0, len(results))}
	for _, res := range results {
		s := assetSummary{
			AssetID: res.AssetID,
			Format:  formatName(res),
			Valid:   res.Valid,
			Size:    res.Size,
			Digest:  res.Digest,
		}
		if res.Valid {
			report.Valid++
			s.Instances = res.Root.Len()
		} else {
			report.Invalid++
		}
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		report.Assets = append(report.Assets, s)
	}
	return report
}
