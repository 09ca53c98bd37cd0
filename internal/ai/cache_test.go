package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGenerator struct {
	calls atomic.Int32
	err   error
}

func (g *countingGenerator) Name() string { return "counting" }

func (g *countingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	if g.err != nil {
		return "", g.err
	}
	return "answer:" + prompt, nil
}

type countingClassifier struct {
	calls atomic.Int32
}

func (c *countingClassifier) Name() string { return "counting" }

func (c *countingClassifier) Classify(_ context.Context, _ string, labels []string) ([]Label, error) {
	c.calls.Add(1)
	return []Label{{Name: labels[0], Score: 0.9}}, nil
}

func TestWithCache_ReusesAnswers(t *testing.T) {
	cache, err := NewCache(1<<20, time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	inner := &countingGenerator{}
	gen := WithCache(inner, cache)
	ctx := context.Background()

	out, err := gen.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "answer:hello", out)
	cache.Wait()

	out, err = gen.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "answer:hello", out)
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err = gen.Generate(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestWithCache_DoesNotCacheErrors(t *testing.T) {
	cache, err := NewCache(1<<20, time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	inner := &countingGenerator{err: errors.New("boom")}
	gen := WithCache(inner, cache)

	_, err = gen.Generate(context.Background(), "p")
	require.Error(t, err)
	cache.Wait()
	_, err = gen.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestWithCache_NilPassthrough(t *testing.T) {
	assert.Nil(t, WithCache(nil, nil))

	inner := &countingGenerator{}
	assert.Same(t, inner, WithCache(inner, nil).(*countingGenerator))
}

func TestWithClassifierCache(t *testing.T) {
	cache, err := NewCache(1<<20, time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	inner := &countingClassifier{}
	cls := WithClassifierCache(inner, cache)
	labels := []string{"Food & Dining", "Other"}

	_, err = cls.Classify(context.Background(), "coffee", labels)
	require.NoError(t, err)
	cache.Wait()
	got, err := cls.Classify(context.Background(), "coffee", labels)
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", got[0].Name)
	assert.Equal(t, int32(1), inner.calls.Load())
}
