package drone

import "sort"

// frontierIndex maps packed cell indices to the timestep at which the cell
// was most recently classified as a frontier. Its key set mirrors exactly
// the cells marked Frontier in the owning drone's internal map; every
// mutation of one must be paired with the other.
type frontierIndex struct {
	cells map[int]int
}

func newFrontierIndex() *frontierIndex {
	return &frontierIndex{cells: make(map[int]int)}
}

func (f *frontierIndex) insert(i, ts int) { f.cells[i] = ts }

func (f *frontierIndex) remove(i int) { delete(f.cells, i) }

func (f *frontierIndex) contains(i int) bool {
	_, ok := f.cells[i]
	return ok
}

func (f *frontierIndex) timestep(i int) (int, bool) {
	ts, ok := f.cells[i]
	return ts, ok
}

func (f *frontierIndex) len() int { return len(f.cells) }

func (f *frontierIndex) empty() bool { return len(f.cells) == 0 }

// sortedIndices returns the packed indices in ascending order. Selection
// iterates in this order so runs with a fixed random seed reproduce.
func (f *frontierIndex) sortedIndices() []int {
	out := make([]int, 0, len(f.cells))
	for i := range f.cells {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// snapshot returns a copy of the index as a plain map, the form exchanged
// between drones during a merge.
func (f *frontierIndex) snapshot() map[int]int {
	out := make(map[int]int, len(f.cells))
	for i, ts := range f.cells {
		out[i] = ts
	}
	return out
}
