package verdict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
)

// Role is the origin of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// MessageType maps a turn role onto the provider-neutral message type.
func (r Role) MessageType() llmtypes.ChatMessageType {
	switch r {
	case RoleAssistant:
		return llmtypes.ChatMessageTypeAI
	case RoleSystem:
		return llmtypes.ChatMessageTypeSystem
	default:
		return llmtypes.ChatMessageTypeHuman
	}
}

// Turn is one message of a conversation history.
type Turn struct {
	Role    Role   `json:"role" jsonschema:"enum=user,enum=assistant,enum=system"`
	Content string `json:"content"`
}

// ErrInvalidHistory is returned by ParseHistory for any malformed input.
var ErrInvalidHistory = errors.New("invalid conversation history")

// ParseHistory decodes a JSON array of turns. "null" is an empty history.
// Every turn needs a known role and a string content; extra keys are ignored.
func ParseHistory(raw string) ([]Turn, error) {
	var entries []struct {
		Role    *string `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}

	turns := make([]Turn, 0, len(entries))
	for i, e := range entries {
		if e.Role == nil || e.Content == nil {
			return nil, fmt.Errorf("%w: turn %d needs role and content", ErrInvalidHistory, i)
		}
		role := Role(strings.ToLower(*e.Role))
		switch role {
		case RoleUser, RoleAssistant, RoleSystem:
		default:
			return nil, fmt.Errorf("%w: turn %d has unknown role %q", ErrInvalidHistory, i, *e.Role)
		}
		turns = append(turns, Turn{Role: role, Content: *e.Content})
	}
	return turns, nil
}

// Verdict is the result record of one shaping request. Exactly one branch is
// populated: Response/Approved/Reason when Success, Error otherwise.
type Verdict struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Approved bool   `json:"approved,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Failure builds an unsuccessful verdict.
func Failure(msg string) Verdict {
	return Verdict{Success: false, Error: msg}
}

// ExitCode is the process exit code for v.
func (v Verdict) ExitCode() int {
	if v.Success {
		return 0
	}
	return 1
}

type successDoc struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

type failureDoc struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits only the populated branch, always including approved on
// success even when false.
func (v Verdict) MarshalJSON() ([]byte, error) {
	var doc any
	if v.Success {
		doc = successDoc{Success: true, Response: v.Response, Approved: v.Approved, Reason: v.Reason}
	} else {
		doc = failureDoc{Success: false, Error: v.Error}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write writes v to w as a 2-space indented JSON document and a newline.
func (v Verdict) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
