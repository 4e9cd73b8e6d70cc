package shrek

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/Vallehtelia/StupidHack25/pkg/verdict"
)

var schemaGenerators = map[string]func() *jsonschema.Schema{
	"reply":   verdict.ReplySchema,
	"verdict": verdict.VerdictSchema,
	"history": verdict.HistorySchema,
}

// SchemaCmd prints the JSON Schemas persona authors and API clients work against.
var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the reply, verdict and history documents",
	Long: `Print JSON Schemas for the documents swampgate reads and writes:

  reply    the object the persona instructions must ask the model for
  verdict  the document printed by "ask" and returned by the HTTP API
  history  the conversation history argument

Examples:
  swampgate schema
  swampgate schema --kind reply
  swampgate schema --out schemas/verdict.schema.json --kind verdict`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		out, _ := cmd.Flags().GetString("out")

		doc, err := buildSchemaDoc(kind)
		if err != nil {
			return err
		}

		if out == "" {
			return writeSchema(cmd.OutOrStdout(), doc)
		}
		if err := writeSchemaFile(out, doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s schema to %s\n", kind, out)
		return nil
	},
}

func init() {
	SchemaCmd.Flags().String("kind", "all", "schema to print (all, reply, verdict, history)")
	SchemaCmd.Flags().String("out", "", "write the schema to this file instead of stdout")
}

// buildSchemaDoc returns a single schema, or for "all" an object keyed by kind.
func buildSchemaDoc(kind string) (any, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "all" {
		all := make(map[string]*jsonschema.Schema, len(schemaGenerators))
		for name, gen := range schemaGenerators {
			all[name] = gen()
		}
		return all, nil
	}

	gen, ok := schemaGenerators[kind]
	if !ok {
		kinds := make([]string, 0, len(schemaGenerators))
		for name := range schemaGenerators {
			kinds = append(kinds, name)
		}
		sort.Strings(kinds)
		return nil, fmt.Errorf("unknown schema kind %q (want all, %s)", kind, strings.Join(kinds, ", "))
	}
	return gen(), nil
}

func writeSchema(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeSchemaFile(filename string, doc any) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	//nolint:gosec // G304: filename comes from the command line
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer f.Close()

	return writeSchema(f, doc)
}
