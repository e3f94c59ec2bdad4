package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/farum-router/internal/adapters/storage/memory"
	"github.com/PabloGalante/farum-router/internal/domain"
)

func texts(entries []*domain.UtteranceEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text)
	}
	return out
}

func TestUtteranceLogKeepsOrder(t *testing.T) {
	ctx := context.Background()
	log := memory.NewUtteranceLog(5)

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, log.Append(ctx, &domain.UtteranceEntry{Text: s}))
	}

	all, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts(all))

	last, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, texts(last))
}

func TestUtteranceLogOverwritesOldest(t *testing.T) {
	ctx := context.Background()
	log := memory.NewUtteranceLog(3)

	for _, s := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, log.Append(ctx, &domain.UtteranceEntry{Text: s}))
	}

	all, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "e"}, texts(all))
	assert.Equal(t, 3, log.Len())
}

func TestUtteranceLogCopiesEntries(t *testing.T) {
	ctx := context.Background()
	log := memory.NewUtteranceLog(2)

	e := &domain.UtteranceEntry{Text: "open chrome"}
	require.NoError(t, log.Append(ctx, e))
	e.Text = "mutated"

	got, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "open chrome", got[0].Text)

	require.NoError(t, log.Append(ctx, nil))
	assert.Equal(t, 1, log.Len())
}

func TestUtteranceLogConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	log := memory.NewUtteranceLog(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = log.Append(ctx, &domain.UtteranceEntry{Text: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, log.Len())
}
