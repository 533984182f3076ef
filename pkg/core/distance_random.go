package core

// DistanceRandom picks indices at random with probability proportional to
// per-index weights (light powers, areas, distances). Calculate rewrites
// the weight slice in place with its prefix sums, so lookups are a binary
// search over the CDF.
type DistanceRandom struct {
	distances []float64
	total     float64
}

// NewDistanceRandom creates a sampler over n zero weights
func NewDistanceRandom(n int) *DistanceRandom {
	if n <= 0 {
		return &DistanceRandom{}
	}
	return &DistanceRandom{distances: make([]float64, n)}
}

// Count returns the number of weighted indices
func (d *DistanceRandom) Count() int {
	return len(d.distances)
}

// SetDistance sets the weight for index id. Must be called before Calculate.
func (d *DistanceRandom) SetDistance(id int, weight float64) {
	d.distances[id] = weight
}

// Distance returns the stored value for index id. After Calculate this is
// the CDF value, not the original weight.
func (d *DistanceRandom) Distance(id int) float64 {
	return d.distances[id]
}

// Total returns the sum of all weights. Valid after Calculate.
func (d *DistanceRandom) Total() float64 {
	return d.total
}

// Calculate replaces the weights with their running prefix sums
func (d *DistanceRandom) Calculate() {
	sum := 0.0
	for i, w := range d.distances {
		sum += w
		d.distances[i] = sum
	}
	d.total = sum
}

// Random returns the index selected by a uniform value in [0, 1)
func (d *DistanceRandom) Random(u float64) int {
	return d.Value(u * d.total)
}

// Value returns the index whose CDF interval contains the distance x,
// x in [0, Total())
func (d *DistanceRandom) Value(x float64) int {
	n := len(d.distances)
	if n <= 0 {
		return -1
	}
	if n == 1 {
		return 0
	}
	if x <= d.distances[0] {
		return 0
	}
	if x >= d.distances[n-2] {
		return n - 1
	}
	l, r := 0, n-1
	for l < r {
		c := (l + r) / 2
		if x <= d.distances[c] {
			r = c
		} else {
			l = c + 1
		}
	}
	return (l + r) / 2
}

// Pdf returns the selection probability of the given index
func (d *DistanceRandom) Pdf(sample int) float64 {
	if sample < 0 || sample >= len(d.distances) || d.total == 0 {
		return 0
	}
	prev := 0.0
	if sample > 0 {
		prev = d.distances[sample-1]
	}
	return (d.distances[sample] - prev) / d.total
}
