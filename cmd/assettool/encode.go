package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/assetdecode/pkg/config"
)

// cborMode encodes with Core Deterministic Encoding so identical trees
// produce identical bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("assettool: CBOR encoder initialization failed: " + err.Error())
	}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	case config.OutputCBOR:
		if err := cborMode.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode cbor: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
	return nil
}
