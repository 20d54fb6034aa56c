package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-rawmem/mallocio"
)

type globalFlags struct {
	outputJSON bool
	verbose    bool
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "rawmem",
		Short: "Raw memory stream inspection tool",
		Long: `rawmem allocates fixed-capacity raw memory blocks through a chosen
allocator and inspects them through the bounds-checked stream interface.

Examples:
  # Allocate 128 bytes from the C runtime and dump them untouched
  rawmem dump --size 128 --allocator libc

  # Zero a 4 KiB mmap block, write a marker, print stats as JSON
  rawmem dump --size 4KiB --allocator mmap --fill 0 --write HELLO --json
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !g.verbose {
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			mallocio.SetLogger(l)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&g.outputJSON, "json", false, "output as JSON instead of YAML")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log allocations to stderr")

	root.AddCommand(newDumpCommand(g))
	root.AddCommand(newAllocatorsCommand(g))
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// outputResult writes v as YAML, or JSON when --json is set.
func outputResult(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
