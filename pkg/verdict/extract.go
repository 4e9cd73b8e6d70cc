package verdict

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Defaults applied when the persona reply omits a field, and the diagnostic
// reasons used when no reply object can be read.
const (
	DefaultResponse = "Hmm, what do you want?"
	DefaultReason   = "No reason given"

	ReasonFormatUnclear = "Response format unclear"
	ReasonParseFailed   = "Failed to parse response format"
)

// Reply is the object the persona is instructed to emit.
type Reply struct {
	Response string `json:"response,omitempty" jsonschema:"description=What the character says out loud"`
	Approved bool   `json:"approved,omitempty" jsonschema:"description=True only when the visitor is let in"`
	Reason   string `json:"reason,omitempty" jsonschema:"description=One sentence explaining the decision"`
}

// ExtractVerdict reads a verdict out of free model text.
//
// The object is the slice from the first '{' to the last '}'. No brace pair
// means the text is returned as-is with ReasonFormatUnclear; a slice that does
// not decode (including '}' before '{') gives ReasonParseFailed. Keys are
// matched exactly, missing or null keys take their defaults, and a key with
// the wrong JSON type counts as a decode failure.
func ExtractVerdict(raw string) Verdict {
	text := strings.TrimSpace(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 {
		return Verdict{Success: true, Response: text, Approved: false, Reason: ReasonFormatUnclear}
	}

	parseFailed := Verdict{Success: true, Response: text, Approved: false, Reason: ReasonParseFailed}
	if start > end {
		return parseFailed
	}

	reply, ok := decodeReply(text[start : end+1])
	if !ok {
		return parseFailed
	}

	return Verdict{
		Success:  true,
		Response: reply.Response,
		Approved: reply.Approved,
		Reason:   reply.Reason,
	}
}

func decodeReply(obj string) (Reply, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return Reply{}, false
	}

	reply := Reply{Response: DefaultResponse, Approved: false, Reason: DefaultReason}
	if !decodeField(fields, "response", &reply.Response) ||
		!decodeField(fields, "approved", &reply.Approved) ||
		!decodeField(fields, "reason", &reply.Reason) {
		return Reply{}, false
	}
	return reply, true
}

// decodeField leaves dst untouched when key is absent or null, so an explicit
// null takes the default. A value of another JSON type reports false.
func decodeField(fields map[string]json.RawMessage, key string, dst any) bool {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return true
	}
	return json.Unmarshal(raw, dst) == nil
}
