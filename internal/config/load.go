package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Load reads a configuration file. The format follows the extension:
// .cue, .yaml/.yml or .hcl.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		return ParseCUE(data, path)
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".hcl":
		return ParseHCL(data, path)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (want .cue, .yaml, .yml or .hcl)", ext)
	}
}

// ParseCUE decodes a CUE configuration after unifying it with the embedded
// #Config schema. Unknown fields are rejected because #Config is closed.
func ParseCUE(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var fc fileConfig
	if err := unified.Decode(&fc); err != nil {
		return Config{}, formatCUEError(err)
	}
	return fc.toConfig()
}

// ParseYAML decodes a YAML configuration, rejecting unknown fields.
func ParseYAML(data []byte) (Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse YAML config: %w", err)
	}
	return fc.toConfig()
}

// hclConfig is the HCL shape:
//
//	provider = "TwoCaptcha"
//	timeout  = "90s"
//	credentials "TwoCaptcha" {
//	  token = "..."
//	}
type hclConfig struct {
	Provider           string           `hcl:"provider,optional"`
	Timeout            string           `hcl:"timeout,optional"`
	BypassBalanceCheck bool             `hcl:"bypass_balance_check,optional"`
	Credentials        []hclCredentials `hcl:"credentials,block"`
}

type hclCredentials struct {
	Kind   string   `hcl:"kind,label"`
	Fields hcl.Body `hcl:",remain"`
}

// ParseHCL decodes an HCL configuration.
func ParseHCL(data []byte, filename string) (Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("parse HCL config: %w", diags)
	}

	var hc hclConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &hc); diags.HasErrors() {
		return Config{}, fmt.Errorf("decode HCL config: %w", diags)
	}

	fc := fileConfig{
		Provider:           hc.Provider,
		Timeout:            hc.Timeout,
		BypassBalanceCheck: hc.BypassBalanceCheck,
		Credentials:        make(map[string]map[string]string, len(hc.Credentials)),
	}
	for _, block := range hc.Credentials {
		attrs, diags := block.Fields.JustAttributes()
		if diags.HasErrors() {
			return Config{}, fmt.Errorf("credentials %q: %w", block.Kind, diags)
		}
		fields := make(map[string]string, len(attrs))
		for name, attr := range attrs {
			var value string
			if diags := gohcl.DecodeExpression(attr.Expr, nil, &value); diags.HasErrors() {
				return Config{}, fmt.Errorf("credentials %q field %q: %w", block.Kind, name, diags)
			}
			fields[name] = value
		}
		fc.Credentials[block.Kind] = fields
	}
	return fc.toConfig()
}

// formatCUEError flattens a CUE error list into one error with positions.
func formatCUEError(err error) error {
	return fmt.Errorf("invalid CUE config: %s", strings.TrimSpace(cueerrors.Details(err, nil)))
}
