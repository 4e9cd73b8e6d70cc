package llm

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/Vallehtelia/StupidHack25/internal/llmtypes"
)

// TokenCounter estimates the prompt size of a message sequence.
type TokenCounter interface {
	Count(messages []llmtypes.MessageContent) (int, error)
}

// tokensPerMessage is the per-message framing overhead of chat formats.
const tokensPerMessage = 4

// TiktokenCounter counts with the cl100k_base encoding. The encoding is loaded
// lazily on first use.
type TiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewTiktokenCounter returns a counter that loads its encoding on first use.
func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{}
}

// Count implements TokenCounter.
func (c *TiktokenCounter) Count(messages []llmtypes.MessageContent) (int, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
	})
	if c.err != nil {
		return 0, fmt.Errorf("load encoding: %w", c.err)
	}

	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		total += len(c.enc.Encode(string(msg.Role), nil, nil))
		total += len(c.enc.Encode(msg.Text(), nil, nil))
	}
	return total, nil
}
