package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformSeries returns n values in range [minVal, maxVal).
func (r *RNG) UniformSeries(n int, minVal, maxVal float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = minVal + r.rand.Float64()*(maxVal-minVal)
	}
	return out
}

// GroupedSeries returns n values where value i is centers[i%len(centers)]
// plus Gaussian noise with standard deviation spread.
func (r *RNG) GroupedSeries(n int, centers []float64, spread float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = centers[i%len(centers)] + r.rand.NormFloat64()*spread
	}
	return out
}

// Structure returns a random flat x,y,z frame of atoms atoms with
// coordinates in [-scale, scale).
func (r *RNG) Structure(atoms int, scale float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, 3*atoms)
	for i := range out {
		out[i] = (r.rand.Float64()*2 - 1) * scale
	}
	return out
}

// Rotation returns a uniformly distributed proper rotation matrix in row
// major order.
func (r *RNG) Rotation() [9]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotationLocked()
}

// rotationLocked builds the matrix from a random unit quaternion
// (caller must hold lock).
func (r *RNG) rotationLocked() [9]float64 {
	var q [4]float64
	var norm float64
	for norm == 0 {
		norm = 0
		for i := range q {
			q[i] = r.rand.NormFloat64()
			norm += q[i] * q[i]
		}
	}
	norm = math.Sqrt(norm)
	w, x, y, z := q[0]/norm, q[1]/norm, q[2]/norm, q[3]/norm

	return [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}
}

// Move applies rotation rot and translation shift to a flat x,y,z frame and
// returns the result.
func Move(frame []float64, rot [9]float64, shift [3]float64) []float64 {
	out := make([]float64, len(frame))
	for a := 0; a+2 < len(frame); a += 3 {
		x, y, z := frame[a], frame[a+1], frame[a+2]
		out[a] = rot[0]*x + rot[1]*y + rot[2]*z + shift[0]
		out[a+1] = rot[3]*x + rot[4]*y + rot[5]*z + shift[1]
		out[a+2] = rot[6]*x + rot[7]*y + rot[8]*z + shift[2]
	}
	return out
}

// GroupedFrames returns n frames of atoms atoms. Frame i is a randomly
// rotated and translated copy of reference structure i%groups with Gaussian
// noise of standard deviation noise on every coordinate.
func (r *RNG) GroupedFrames(n, atoms, groups int, noise float64) [][]float64 {
	refs := make([][]float64, groups)
	for g := range refs {
		refs[g] = r.Structure(atoms, 5)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	frames := make([][]float64, n)
	for i := range frames {
		rot := r.rotationLocked()
		shift := [3]float64{r.rand.NormFloat64() * 10, r.rand.NormFloat64() * 10, r.rand.NormFloat64() * 10}
		f := Move(refs[i%groups], rot, shift)
		for k := range f {
			f[k] += r.rand.NormFloat64() * noise
		}
		frames[i] = f
	}
	return frames
}

// SamePartition reports whether two assignments group the items the same
// way, regardless of cluster numbering. Negative entries must match exactly.
func SamePartition(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	ab := make(map[int]int)
	ba := make(map[int]int)
	for i := range a {
		if a[i] < 0 || b[i] < 0 {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if v, ok := ab[a[i]]; ok && v != b[i] {
			return false
		}
		if v, ok := ba[b[i]]; ok && v != a[i] {
			return false
		}
		ab[a[i]] = b[i]
		ba[b[i]] = a[i]
	}
	return true
}
