package verdict

import (
	"github.com/invopop/jsonschema"
)

// ReplySchema describes the object persona files must ask the model for.
func ReplySchema() *jsonschema.Schema {
	return reflectSchema(&Reply{})
}

// VerdictSchema describes the document printed by the CLI and returned by the
// HTTP API.
func VerdictSchema() *jsonschema.Schema {
	return reflectSchema(&Verdict{})
}

// HistorySchema describes the conversation history argument.
func HistorySchema() *jsonschema.Schema {
	return reflectSchema(&[]Turn{})
}

func reflectSchema(v any) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true
	r.RequiredFromJSONSchemaTags = true
	return r.Reflect(v)
}
