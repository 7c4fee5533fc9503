package giveaway

import (
	"math/bits"
	"math/rand/v2"
)

// Source supplies random integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource is safe for concurrent use
var DefaultSource Source = globalSource{}

// Candidate is a user and their draw weight
type Candidate struct {
	UserID string
	Weight int
}

// SelectWinners draws up to count distinct users, each draw picking a weight
// unit uniformly from the remaining pool and then removing every unit of the
// drawn user. Weights of repeated users add up; weights below 1 never win.
func SelectWinners(candidates []Candidate, count int, src Source) []string {
	if count <= 0 || len(candidates) == 0 {
		return []string{}
	}
	if src == nil {
		src = DefaultSource
	}

	index := make(map[string]int, len(candidates))
	var users []string
	var weights []int
	for _, c := range candidates {
		if c.Weight < 1 {
			continue
		}
		if i, ok := index[c.UserID]; ok {
			weights[i] += c.Weight
			continue
		}
		index[c.UserID] = len(users)
		users = append(users, c.UserID)
		weights = append(weights, c.Weight)
	}

	tree := newFenwick(weights)
	total := tree.total

	winners := make([]string, 0, min(count, len(users)))
	for len(winners) < count && total > 0 {
		i := tree.find(src.IntN(total))
		winners = append(winners, users[i])
		tree.add(i, -weights[i])
		total -= weights[i]
		weights[i] = 0
	}
	return winners
}

// fenwick is a binary indexed tree over the candidate weights
type fenwick struct {
	tree  []int
	total int
}

func newFenwick(weights []int) *fenwick {
	f := &fenwick{tree: make([]int, len(weights)+1)}
	for i, w := range weights {
		f.tree[i+1] += w
		f.total += w
		if parent := (i + 1) + ((i + 1) & -(i + 1)); parent < len(f.tree) {
			f.tree[parent] += f.tree[i+1]
		}
	}
	return f
}

// add changes the weight at zero-based index i
func (f *fenwick) add(i, delta int) {
	for j := i + 1; j < len(f.tree); j += j & -j {
		f.tree[j] += delta
	}
}

// find returns the zero-based index owning unit target, with 0 <= target < total
func (f *fenwick) find(target int) int {
	n := len(f.tree) - 1
	pos := 0
	for step := 1 << (bits.Len(uint(n)) - 1); step > 0; step >>= 1 {
		if next := pos + step; next <= n && f.tree[next] <= target {
			pos = next
			target -= f.tree[next]
		}
	}
	return pos
}
