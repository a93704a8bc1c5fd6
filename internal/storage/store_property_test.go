package storage

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

// TestTable_Property_MatchesModel applies random operations to a table and a
// plain map model and checks that lengths, values and key order agree.
func TestTable_Property_MatchesModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	origins := []string{"http://a/", "http://b:8080/", "https://c/"}

	for trial := 0; trial < 20; trial++ {
		table := NewTable()
		model := make(map[string]map[string]string)

		for op := 0; op < 500; op++ {
			origin := origins[rng.Intn(len(origins))]
			key := fmt.Sprintf("k%02d", rng.Intn(30))

			switch rng.Intn(10) {
			case 0:
				table.Clear(origin)
				delete(model, origin)
			case 1, 2, 3:
				before := len(model[origin])
				_, existed := model[origin][key]
				table.RemoveItem(origin, key)
				if model[origin] != nil {
					delete(model[origin], key)
				}
				after := table.Length(origin)
				if existed && int(after) != before-1 {
					t.Fatalf("Length should drop by one: before=%d after=%d", before, after)
				}
				if !existed && int(after) != before {
					t.Fatalf("Length should be unchanged: before=%d after=%d", before, after)
				}
			default:
				value := fmt.Sprintf("v%d", rng.Intn(5))
				table.SetItem(origin, key, value)
				if model[origin] == nil {
					model[origin] = make(map[string]string)
				}
				model[origin][key] = value
			}
		}

		for _, origin := range origins {
			want := model[origin]
			if int(table.Length(origin)) != len(want) {
				t.Fatalf("Length(%s) = %d, want %d", origin, table.Length(origin), len(want))
			}

			keys := make([]string, 0, len(want))
			for k := range want {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for i, k := range keys {
				if item := table.Key(origin, uint32(i)); item != Some(k) {
					t.Fatalf("Key(%s, %d) = %+v, want %q", origin, i, item, k)
				}
				if item := table.GetItem(origin, k); item != Some(want[k]) {
					t.Fatalf("GetItem(%s, %s) = %+v, want %q", origin, k, item, want[k])
				}
			}
			if item := table.Key(origin, uint32(len(keys))); item.Present {
				t.Fatalf("Key(%s, %d) should be absent", origin, len(keys))
			}
		}
	}
}
