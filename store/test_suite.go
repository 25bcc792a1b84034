package store

import (
	"fmt"
	"testing"

	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/weavetest/assert"
)

// StoreConstructor returns a fresh, empty store and a function releasing it.
type StoreConstructor func() (base CacheableKVStore, cleanup func())

// RunSuite runs the behaviour every CacheableKVStore implementation must
// provide. Each subtest gets its own store.
func RunSuite(t *testing.T, makeBase StoreConstructor) {
	cases := map[string]func(*testing.T, CacheableKVStore){
		"get set":             suiteGetSet,
		"savepoints":          suiteSavepoints,
		"ordered iteration":   suiteIteration,
		"iteration with wrap": suiteIterationWithWrap,
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := makeBase()
			defer cleanup()
			run(t, base)
		})
	}
}

// AssertGetHas checks that Get and Has agree on the state of key.
func AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, want []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func suiteGetSet(t *testing.T, base CacheableKVStore) {
	acc, bal := []byte("sacc:payer"), []byte("100")
	AssertGetHas(t, base, acc, nil, false)
	assert.Nil(t, base.Set(acc, bal))
	AssertGetHas(t, base, acc, bal, true)

	assert.Nil(t, base.Set(acc, []byte("75")))
	AssertGetHas(t, base, acc, []byte("75"), true)

	assert.Nil(t, base.Delete(acc))
	AssertGetHas(t, base, acc, nil, false)
	// Deleting a missing key is not an error.
	assert.Nil(t, base.Delete(acc))
}

// suiteSavepoints follows the way a batch of messages uses the store: an
// outer wrap for the whole batch and one inner wrap per message.
func suiteSavepoints(t *testing.T, base CacheableKVStore) {
	kept, dropped, gone := []byte("strm:a"), []byte("strm:b"), []byte("strm:c")
	assert.Nil(t, base.Set(gone, []byte("old")))

	batch := base.CacheWrap()
	AssertGetHas(t, batch, gone, []byte("old"), true)

	first := batch.CacheWrap()
	assert.Nil(t, first.Set(kept, []byte("1")))
	assert.Nil(t, first.Delete(gone))
	assert.Nil(t, first.Write())

	second := batch.CacheWrap()
	assert.Nil(t, second.Set(dropped, []byte("2")))
	AssertGetHas(t, second, dropped, []byte("2"), true)
	second.Discard()

	AssertGetHas(t, batch, kept, []byte("1"), true)
	AssertGetHas(t, batch, dropped, nil, false)
	AssertGetHas(t, batch, gone, nil, false)
	// Nothing reaches the base before the batch is written.
	AssertGetHas(t, base, kept, nil, false)
	AssertGetHas(t, base, gone, []byte("old"), true)

	assert.Nil(t, batch.Write())
	AssertGetHas(t, base, kept, []byte("1"), true)
	AssertGetHas(t, base, dropped, nil, false)
	AssertGetHas(t, base, gone, nil, false)
}

func suiteIteration(t *testing.T, base CacheableKVStore) {
	var all []Model
	for _, payer := range []string{"alice", "bob"} {
		for i := 0; i < 5; i++ {
			m := Pair([]byte(fmt.Sprintf("strm:%s:%02d", payer, i)), []byte(fmt.Sprintf("%s-%d", payer, i)))
			assert.Nil(t, base.Set(m.Key, m.Value))
			all = append(all, m)
		}
	}
	assert.Nil(t, base.Set([]byte("sacc:alice"), []byte("account")))

	assertRange(t, base, false, []byte("strm:"), []byte("strm;"), all)
	assertRange(t, base, false, []byte("strm:bob:"), []byte("strm:bob;"), all[5:])
	assertRange(t, base, true, []byte("strm:alice:"), []byte("strm:alice;"), reversed(all[:5]))
	// The end bound is exclusive.
	assertRange(t, base, false, all[1].Key, all[3].Key, all[1:3])
	assertRange(t, base, false, []byte("zzz"), nil, nil)
}

func suiteIterationWithWrap(t *testing.T, base CacheableKVStore) {
	for i := 0; i < 6; i++ {
		assert.Nil(t, base.Set([]byte(fmt.Sprintf("k%d", i)), []byte("base")))
	}

	wrap := base.CacheWrap()
	ops := []Op{
		DelOp([]byte("k0")),
		SetOp([]byte("k2"), []byte("wrap")),
		DelOp([]byte("k3")),
		SetOp([]byte("k35"), []byte("new")),
		SetOp([]byte("k9"), []byte("new")),
	}
	for _, op := range ops {
		assert.Nil(t, op.Apply(wrap))
	}

	want := []Model{
		Pair([]byte("k1"), []byte("base")),
		Pair([]byte("k2"), []byte("wrap")),
		Pair([]byte("k35"), []byte("new")),
		Pair([]byte("k4"), []byte("base")),
		Pair([]byte("k5"), []byte("base")),
		Pair([]byte("k9"), []byte("new")),
	}
	assertRange(t, wrap, false, nil, nil, want)
	assertRange(t, wrap, true, nil, nil, reversed(want))
	assertRange(t, wrap, false, []byte("k2"), []byte("k5"), want[1:4])

	// The base is untouched until the wrap is written.
	assertRange(t, base, false, []byte("k0"), []byte("k1"), []Model{Pair([]byte("k0"), []byte("base"))})
	assert.Nil(t, wrap.Write())
	assertRange(t, base, false, nil, nil, want)
}

func assertRange(t testing.TB, kv ReadOnlyKVStore, reverse bool, start, end []byte, want []Model) {
	t.Helper()
	var (
		it  Iterator
		err error
	)
	if reverse {
		it, err = kv.ReverseIterator(start, end)
	} else {
		it, err = kv.Iterator(start, end)
	}
	assert.Nil(t, err)
	defer it.Release()

	for i, m := range want {
		key, value, err := it.Next()
		assert.Nil(t, err)
		if string(key) != string(m.Key) {
			t.Fatalf("entry %d: want key %q, got %q", i, m.Key, key)
		}
		assert.Equal(t, m.Value, value)
	}
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done, got %+v", err)
	}
}

func reversed(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}
