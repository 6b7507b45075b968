package cache

import (
	"cmp"
	"testing"
)

// Fuzz arbitrary Insert/Find/Remove/Balance sequences decoded from bytes.
// Guards against panics and checks the structural invariants after every
// operation.
func FuzzCache_Ops(f *testing.F) {
	// Seed corpus: empty, sorted run, mixed ops.
	f.Add(uint8(3), []byte{})
	f.Add(uint8(4), []byte{0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 3, 0})
	f.Add(uint8(2), []byte{0, 9, 1, 9, 2, 9, 0, 1, 0, 2, 0, 3, 1, 1})

	f.Fuzz(func(t *testing.T, capacity uint8, ops []byte) {
		c, err := New(Options[int]{
			Capacity: int(capacity%32) + 1,
			Compare:  cmp.Compare[int],
			Debug:    func(string, int, string, ...any) {},
		})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = c.Close() })

		for i := 0; i+1 < len(ops); i += 2 {
			k := int(ops[i+1] % 48)
			switch ops[i] % 4 {
			case 0:
				if _, err := c.Insert(k); err != nil {
					t.Fatalf("Insert(%d): %v", k, err)
				}
				if head, _ := firstOf(c); head != k {
					t.Fatalf("Insert(%d) must make it MRU, head=%d", k, head)
				}
			case 1:
				if v, ok := c.Find(k); ok && v != k {
					t.Fatalf("Find(%d) returned %d", k, v)
				}
			case 2:
				c.Remove(k)
			case 3:
				if err := c.Balance(); err != nil {
					t.Fatalf("Balance: %v", err)
				}
			}
			if err := c.Check(); err != nil {
				t.Fatal(err)
			}
			if c.Len() > c.Cap() {
				t.Fatalf("Len %d exceeds Cap %d", c.Len(), c.Cap())
			}
		}
	})
}

func firstOf(c *Cache[int]) (int, bool) {
	for v := range c.All() {
		return v, true
	}
	return 0, false
}
