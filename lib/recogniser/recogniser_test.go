package recogniser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

func fixed(spans ...entity.RawSpan) Client {
	return Func(func(context.Context, string) ([]entity.RawSpan, error) {
		return spans, nil
	})
}

func TestCompose(t *testing.T) {
	c := Compose(
		fixed(entity.RawSpan{Label: "PER", Start: 0, End: 4}),
		fixed(),
		fixed(entity.RawSpan{Label: "ORG", Start: 5, End: 9}),
	)

	spans, err := c.Recognise(context.Background(), "Anne Acme")
	require.NoError(t, err)
	assert.Equal(t, []entity.RawSpan{
		{Label: "PER", Start: 0, End: 4},
		{Label: "ORG", Start: 5, End: 9},
	}, spans)
}

func TestComposeStopsOnError(t *testing.T) {
	failure := errors.New("model unavailable")
	called := false
	c := Compose(
		Func(func(context.Context, string) ([]entity.RawSpan, error) { return nil, failure }),
		Func(func(context.Context, string) ([]entity.RawSpan, error) {
			called = true
			return nil, nil
		}),
	)

	spans, err := c.Recognise(context.Background(), "text")
	assert.Nil(t, spans)
	assert.Same(t, failure, err)
	assert.False(t, called)
}

func TestWithTimeout(t *testing.T) {
	slow := Func(func(ctx context.Context, _ string) ([]entity.RawSpan, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).Recognise(context.Background(), "text")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c := fixed(entity.RawSpan{Label: "PER"})
	assert.NotNil(t, WithTimeout(c, 0))
}
