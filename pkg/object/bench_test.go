package object

import (
	"fmt"
	"testing"
)

func BenchmarkStoreWriteUniqueBlob(b *testing.B) {
	store := NewStore(b.TempDir())
	seed := []byte("0123456789abcdef0123456789abcdef")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := []byte(fmt.Sprintf("blob-%d-%x", i, seed))
		if _, err := store.Write(TypeBlob, payload); err != nil {
			b.Fatalf("Write: %v", err)
		}
	}
}

func BenchmarkStoreGetCommit(b *testing.B) {
	for _, cacheSize := range []int{0, 128} {
		b.Run(fmt.Sprintf("cache=%d", cacheSize), func(b *testing.B) {
			store := NewStore(b.TempDir(), WithCacheSize(cacheSize))
			h, err := store.Put(&Commit{
				Tree:      hashA,
				Parents:   []Hash{hashB, hashC},
				Author:    "Bench <bench@example.com> 1700000000 +0000",
				Committer: "Bench <bench@example.com> 1700000000 +0000",
				Message:   "benchmark commit\n",
			})
			if err != nil {
				b.Fatalf("Put: %v", err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.ReadCommit(h); err != nil {
					b.Fatalf("ReadCommit: %v", err)
				}
			}
		})
	}
}

func BenchmarkMarshalTree(b *testing.B) {
	tree := &Tree{}
	for i := 0; i < 512; i++ {
		tree.Entries = append(tree.Entries, TreeEntry{
			Mode: TreeModeFile,
			Name: fmt.Sprintf("file-%04d.go", 511-i),
			Hash: hashA,
		})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MarshalTree(tree); err != nil {
			b.Fatalf("MarshalTree: %v", err)
		}
	}
}
