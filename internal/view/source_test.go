package view

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   int
	Name string
}

func ids(rows []row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

var byName = By(func(r row) string { return r.Name })

func TestSource(t *testing.T) {
	t.Run("ties keep input order", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords([]row{{1, "b"}, {2, "a"}, {3, "a"}})
		s.SetSort(byName, Asc)
		require.NoError(t, s.SetPage(0, 10))

		v := s.View()
		assert.Equal(t, []int{2, 3, 1}, ids(v.Items))
		assert.Equal(t, 3, v.TotalCount)
		assert.Equal(t, 1, v.PageCount)
	})

	t.Run("descending keeps ties in input order", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords([]row{{1, "a"}, {2, "b"}, {3, "a"}, {4, "b"}})
		s.SetSort(byName, Desc)

		assert.Equal(t, []int{2, 4, 1, 3}, ids(s.View().Items))
	})

	t.Run("direction none keeps filtered order", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords([]row{{1, "c"}, {2, "a"}, {3, "b"}})
		s.SetSort(byName, None)

		assert.Equal(t, []int{1, 2, 3}, ids(s.View().Items))
	})

	t.Run("page index past the end clamps to last page", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords(makeRows(15))

		require.NoError(t, s.SetPage(5, 10))

		v := s.View()
		assert.Equal(t, 2, v.PageCount)
		assert.Equal(t, 1, v.PageIndex)
		assert.Equal(t, []int{10, 11, 12, 13, 14}, ids(v.Items))
	})

	t.Run("negative page index clamps to first page", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords(makeRows(15))

		require.NoError(t, s.SetPage(-3, 10))
		assert.Equal(t, 0, s.View().PageIndex)
	})

	t.Run("invalid page size leaves view unchanged", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords(makeRows(30))
		require.NoError(t, s.SetPage(1, 10))
		before := s.View()

		var emitted int
		s.Subscribe(ObserverFunc[row](func(Result[row]) { emitted++ }))

		assert.ErrorIs(t, s.SetPage(0, 0), ErrInvalidPageSize)
		assert.ErrorIs(t, s.SetPage(0, -4), ErrInvalidPageSize)

		assert.Equal(t, before, s.View())
		assert.Zero(t, emitted)
	})

	t.Run("empty set has no pages", func(t *testing.T) {
		s := NewSource[row]()
		require.NoError(t, s.SetPage(3, 10))

		v := s.View()
		assert.Empty(t, v.Items)
		assert.NotNil(t, v.Items)
		assert.Equal(t, 0, v.TotalCount)
		assert.Equal(t, 0, v.PageCount)
		assert.Equal(t, 0, v.PageIndex)
	})

	t.Run("shrinking filter re-clamps page", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords(makeRows(40))
		require.NoError(t, s.SetPage(3, 10))

		s.SetFilter(func(r row) bool { return r.ID < 12 })

		v := s.View()
		assert.Equal(t, 2, v.PageCount)
		assert.Equal(t, 1, v.PageIndex)
		assert.Equal(t, []int{10, 11}, ids(v.Items))
	})

	t.Run("nil filter keeps everything", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords(makeRows(3))
		s.SetFilter(func(row) bool { return false })
		require.Equal(t, 0, s.View().TotalCount)

		s.SetFilter(nil)
		assert.Equal(t, 3, s.View().TotalCount)
	})

	t.Run("caller slice is copied", func(t *testing.T) {
		rows := []row{{1, "b"}, {2, "a"}}
		s := NewSource[row]()
		s.SetRecords(rows)
		s.SetSort(byName, Asc)

		rows[0].Name = "z"
		rows[1] = row{99, "zz"}
		assert.Equal(t, []row{{2, "a"}, {1, "b"}}, s.View().Items)
		assert.Equal(t, []row{{1, "z"}, {99, "zz"}}, rows, "sorting must not touch the caller's slice")
	})

	t.Run("results do not alias internal state", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords([]row{{1, "a"}})

		v := s.View()
		v.Items[0].Name = "mutated"
		assert.Equal(t, "a", s.View().Items[0].Name)
	})

	t.Run("equal records give identical results", func(t *testing.T) {
		s := NewSource[row]()
		s.SetSort(byName, Asc)
		require.NoError(t, s.SetPage(1, 4))

		s.SetRecords(shuffledRows(20, 7))
		first := s.View()
		s.SetRecords(shuffledRows(20, 7))
		second := s.View()

		assert.Equal(t, first, second)
	})

	t.Run("observers receive every recomputation", func(t *testing.T) {
		s := NewSource[row]()
		var got []int

		current, unsubscribe := s.Subscribe(ObserverFunc[row](func(r Result[row]) {
			got = append(got, r.TotalCount)
		}))
		assert.Equal(t, 0, current.TotalCount)

		s.SetRecords(makeRows(5))
		s.SetFilter(func(r row) bool { return r.ID%2 == 0 })
		s.SetSort(byName, Asc)
		require.NoError(t, s.SetPage(0, 2))
		unsubscribe()
		s.SetRecords(nil)

		assert.Equal(t, []int{5, 3, 3, 3}, got)
	})

	t.Run("next and prev stop at the ends", func(t *testing.T) {
		s := NewSource[row]()
		s.SetRecords(makeRows(25))
		require.NoError(t, s.SetPage(0, 10))

		s.PrevPage()
		assert.Equal(t, 0, s.View().PageIndex)

		s.NextPage()
		s.NextPage()
		s.NextPage()
		v := s.View()
		assert.Equal(t, 2, v.PageIndex)
		assert.False(t, v.HasNext())
		assert.True(t, v.HasPrev())
	})
}

func TestDerive(t *testing.T) {
	t.Run("pages partition the filtered set", func(t *testing.T) {
		records := shuffledRows(103, 1)
		keep := func(r row) bool { return r.ID%3 != 0 }

		for _, size := range []int{1, 7, 10, 68, 200} {
			t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
				state := State[row]{Filter: keep, Compare: byName, Direction: Asc, PageSize: size}
				first, err := Derive(records, state)
				require.NoError(t, err)

				var seen []int
				for i := range first.PageCount {
					state.PageIndex = i
					page, err := Derive(records, state)
					require.NoError(t, err)
					assert.LessOrEqual(t, len(page.Items), size)
					seen = append(seen, ids(page.Items)...)
				}

				whole, err := Derive(records, State[row]{Filter: keep, Compare: byName, Direction: Asc, PageSize: len(records)})
				require.NoError(t, err)
				assert.Equal(t, ids(whole.Items), seen)
				assert.Equal(t, first.TotalCount, len(seen))
			})
		}
	})

	t.Run("sort is stable", func(t *testing.T) {
		// Few distinct names, many ties.
		records := make([]row, 200)
		r := rand.New(rand.NewPCG(3, 4))
		for i := range records {
			records[i] = row{ID: i, Name: string(rune('a' + r.IntN(4)))}
		}

		for _, dir := range []Direction{Asc, Desc} {
			res, err := Derive(records, State[row]{Compare: byName, Direction: dir, PageSize: len(records)})
			require.NoError(t, err)

			for i := 1; i < len(res.Items); i++ {
				prev, cur := res.Items[i-1], res.Items[i]
				if prev.Name == cur.Name {
					assert.Less(t, prev.ID, cur.ID, "tie order broken at %d (%s)", i, dir)
				}
			}
		}
	})

	t.Run("page count rounds up", func(t *testing.T) {
		res, err := Derive(makeRows(21), State[row]{PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, res.PageCount)
	})

	t.Run("rejects non-positive page size", func(t *testing.T) {
		_, err := Derive(makeRows(1), State[row]{})
		assert.ErrorIs(t, err, ErrInvalidPageSize)
	})

	t.Run("then breaks ties", func(t *testing.T) {
		records := []row{{3, "a"}, {1, "b"}, {2, "a"}}
		compare := byName.Then(By(func(r row) int { return r.ID }))

		res, err := Derive(records, State[row]{Compare: compare, Direction: Asc, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 1}, ids(res.Items))
	})
}

func TestSourceHugePageSize(t *testing.T) {
	for _, size := range []int{math.MaxInt, math.MaxInt/2 + 1} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			s := NewSource[row]()
			s.SetRecords(makeRows(3))
			require.NoError(t, s.SetPage(5, size))

			v := s.View()
			assert.Equal(t, []int{0, 1, 2}, ids(v.Items))
			assert.Equal(t, 1, v.PageCount)
			assert.Equal(t, 0, v.PageIndex)
			assert.Equal(t, size, v.PageSize)

			// Later recomputes keep working with the stored size
			s.SetFilter(func(r row) bool { return r.ID != 2 })
			s.SetRecords(makeRows(4))
			assert.Equal(t, []int{0, 1, 3}, ids(s.View().Items))
		})
	}

	t.Run("empty set", func(t *testing.T) {
		res, err := Derive([]row{}, State[row]{PageSize: math.MaxInt})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Equal(t, 0, res.PageCount)
	})
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "asc", Asc.String())
	assert.Equal(t, "desc", Desc.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "unknown", Direction(9).String())
}

func makeRows(n int) []row {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{ID: i, Name: strings.Repeat("x", i%5)}
	}
	return rows
}

func shuffledRows(n int, seed uint64) []row {
	rows := makeRows(n)
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}
