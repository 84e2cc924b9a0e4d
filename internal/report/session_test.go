package report

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/report-bot/internal/schema"
)

func TestMemorySessionStore_PutGetDelete(t *testing.T) {
	store := NewMemorySessionStore()

	_, ok := store.Get(100)
	assert.False(t, ok)

	sess := &Session{
		ChatID: 100,
		Phase:  PhaseMenu,
		Draft:  NewDraft(schema.Default()),
	}
	store.Put(100, sess)

	got, ok := store.Get(100)
	require.True(t, ok)
	assert.Same(t, sess, got)

	store.Delete(100)
	_, ok = store.Get(100)
	assert.False(t, ok)
}

func TestMemorySessionStore_IsolatedPerUser(t *testing.T) {
	store := NewMemorySessionStore()

	a := &Session{ChatID: 1, Phase: PhaseMenu, Draft: NewDraft(schema.Default())}
	b := &Session{ChatID: 2, Phase: PhaseAwaitingValue, Draft: NewDraft(schema.Default())}
	store.Put(1, a)
	store.Put(2, b)

	store.Delete(1)

	_, ok := store.Get(1)
	assert.False(t, ok)
	got, ok := store.Get(2)
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestMemorySessionStore_ConcurrentAccess(t *testing.T) {
	store := NewMemorySessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.Put(id, &Session{ChatID: id, Phase: PhaseMenu, Draft: NewDraft(schema.Default())})
			store.Get(id)
			store.Delete(id)
		}(int64(i))
	}
	wg.Wait()
}
