// Package tokenizer counts tokens locally for providers that report no usage.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding used for every model. cl100k_base matches the gpt-4 family closely
// enough for cost accounting of other providers.
const Encoding = "cl100k_base"

func init() {
	// BPE ranks ship with the binary; no network on first use.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter counts tokens with a shared tiktoken encoding.
type Counter struct {
	enc *tiktoken.Tiktoken
}

var (
	shared     *Counter
	sharedOnce sync.Once
	sharedErr  error
)

// Default returns the process-wide counter, loading the encoding once.
func Default() (*Counter, error) {
	sharedOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(Encoding)
		if err != nil {
			sharedErr = fmt.Errorf("load %s encoding: %w", Encoding, err)
			return
		}
		shared = &Counter{enc: enc}
	})
	return shared, sharedErr
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}
