package godm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/godm"
)

type M = godm.M

func BenchmarkBuild(b *testing.B) {
	user := newUser()

	b.Run("Conditions", func(b *testing.B) {
		spec := M{"name": "joe", "age": M{"$gte": 18}}
		for b.Loop() {
			_, _, _ = godm.Build(user, spec)
		}
	})

	b.Run("Options", func(b *testing.B) {
		spec := M{"name": "joe", "order": "age desc, name", "limit": 10, "select": "name,age"}
		for b.Loop() {
			_, _, _ = godm.Build(user, spec)
		}
	})
}

func BenchmarkInsert(b *testing.B) {
	ctx := context.Background()
	store := godm.NewStore()

	for b.Loop() {
		_ = store.Insert(ctx, "users", M{"_id": uuid.New(), "name": "joe"})
	}
}

func BenchmarkFind(b *testing.B) {
	ctx := context.Background()

	sizes := [...]int{10, 1_000, 10_000}

	for _, size := range sizes {
		store := godm.NewStore()
		for n := range size {
			doc := M{"_id": uuid.New(), "n": int64(n)}
			if err := store.Insert(ctx, "users", doc); err != nil {
				b.Fatal(err)
			}
		}

		b.Run(fmt.Sprintf("Size=%d/Scan", size), func(b *testing.B) {
			for b.Loop() {
				_, _ = store.Find(ctx, "users", godm.Criteria{"n": int64(size / 2)}, godm.QueryOptions{})
			}
		})

		if err := store.EnsureIndex(ctx, "users", "n", false); err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("Size=%d/Index", size), func(b *testing.B) {
			for b.Loop() {
				_, _ = store.Find(ctx, "users", godm.Criteria{"n": int64(size / 2)}, godm.QueryOptions{})
			}
		})
	}
}
