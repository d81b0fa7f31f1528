package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lscript/internal/block"
	"github.com/roach88/lscript/internal/provider"
)

// KindsResult lists what scripts and configs can name.
type KindsResult struct {
	Blocks    []BlockKind    `json:"blocks"`
	Functions []string       `json:"functions"`
	Providers []ProviderKind `json:"providers"`
}

// BlockKind describes one registered block keyword.
type BlockKind struct {
	Keyword     string `json:"keyword"`
	Description string `json:"description"`
	Syntax      string `json:"syntax"`
}

// ProviderKind describes one provider kind.
type ProviderKind struct {
	Kind         string   `json:"kind"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	Credentials  []string `json:"credentials"`
	Client       bool     `json:"client"` // a client is built in
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "kinds",
		Short:         "List block keywords, functions and provider kinds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			res := listKinds(block.DefaultRegistry(), provider.DefaultRegistry())
			if f.JSON() {
				return f.Success(res)
			}
			printKinds(f, res)
			return nil
		},
	}
}

func listKinds(blocks *block.Registry, providers *provider.Registry) KindsResult {
	res := KindsResult{}
	for _, d := range blocks.Descriptors() {
		res.Blocks = append(res.Blocks, BlockKind{Keyword: d.Keyword, Description: d.Description, Syntax: d.Syntax})
	}
	for _, name := range block.FunctionNames() {
		res.Functions = append(res.Functions, string(name))
	}
	for _, d := range providers.Descriptors() {
		pk := ProviderKind{
			Kind:         string(d.Kind),
			Description:  d.Description,
			Capabilities: []string{},
			Credentials:  append([]string{}, d.Credentials...),
			Client:       d.Factory != nil,
		}
		for _, c := range d.Capabilities {
			pk.Capabilities = append(pk.Capabilities, string(c))
		}
		res.Providers = append(res.Providers, pk)
	}
	return res
}

func printKinds(f *OutputFormatter, res KindsResult) {
	w := f.Writer
	fmt.Fprintln(w, "Blocks:")
	for _, b := range res.Blocks {
		fmt.Fprintf(w, "  %-10s %s\n", b.Keyword, b.Description)
		fmt.Fprintf(w, "  %-10s %s\n", "", b.Syntax)
	}
	fmt.Fprintln(w, "\nFunctions:")
	fmt.Fprintf(w, "  %s\n", strings.Join(res.Functions, ", "))
	fmt.Fprintln(w, "\nProviders:")
	for _, p := range res.Providers {
		client := ""
		if !p.Client {
			client = " (no built-in client)"
		}
		fmt.Fprintf(w, "  %-16s %s [%s]%s\n", p.Kind, p.Description, strings.Join(p.Capabilities, ", "), client)
	}
}
