package http

import (
	"context"
	"sync"

	"github.com/gamstore/storefront/internal/domain"
)

type confirmationKey struct{}

// confirmation carries the client's pre-supplied answer to a replace-cart
// prompt and records the prompt that was asked.
type confirmation struct {
	mu     sync.Mutex
	answer bool
	asked  bool
	prompt domain.Prompt
}

func withConfirmation(ctx context.Context, answer bool) (context.Context, *confirmation) {
	conf := &confirmation{answer: answer}
	return context.WithValue(ctx, confirmationKey{}, conf), conf
}

func (c *confirmation) Prompt() (domain.Prompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt, c.asked
}

// RequestConfirmer answers cart prompts with the replaceCart flag of the
// request being served. Requests without the flag decline.
var RequestConfirmer = domain.ConfirmerFunc(func(ctx context.Context, prompt domain.Prompt) bool {
	conf, ok := ctx.Value(confirmationKey{}).(*confirmation)
	if !ok {
		return false
	}
	conf.mu.Lock()
	defer conf.mu.Unlock()
	conf.asked = true
	conf.prompt = prompt
	return conf.answer
})
