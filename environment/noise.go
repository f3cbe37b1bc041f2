package environment

import (
	"math"
	"math/rand"
)

// patchNoise is a seeded 3D Perlin field. The third axis is time, so the
// food patches drift slowly instead of jumping between spawn waves.
type patchNoise struct {
	perm    [512]int
	octaves int
}

func newPatchNoise(seed int64, octaves int) *patchNoise {
	n := &patchNoise{octaves: max(octaves, 1)}
	for i, v := range rand.New(rand.NewSource(seed)).Perm(256) {
		n.perm[i] = v
		n.perm[i+256] = v
	}
	return n
}

// Sample returns fractal noise at (x, y, t) mapped to [0, 1].
func (n *patchNoise) Sample(x, y, t float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for o := 0; o < n.octaves; o++ {
		sum += amp * n.perlin(x*freq, y*freq, t*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	v := (sum/norm + 1) / 2
	return math.Max(0, math.Min(1, v))
}

// perlin returns improved Perlin noise in roughly [-1, 1].
func (n *patchNoise) perlin(x, y, z float64) float64 {
	xf, yf, zf := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := int(xf)&255, int(yf)&255, int(zf)&255
	x, y, z = x-xf, y-yf, z-zf
	u, v, w := fade(x), fade(y), fade(z)

	p := &n.perm
	a := p[xi] + yi
	aa, ab := p[a]+zi, p[a+1]+zi
	b := p[xi+1] + yi
	ba, bb := p[b]+zi, p[b+1]+zi

	near := lerp(v,
		lerp(u, grad(p[aa], x, y, z), grad(p[ba], x-1, y, z)),
		lerp(u, grad(p[ab], x, y-1, z), grad(p[bb], x-1, y-1, z)))
	far := lerp(v,
		lerp(u, grad(p[aa+1], x, y, z-1), grad(p[ba+1], x-1, y, z-1)),
		lerp(u, grad(p[ab+1], x, y-1, z-1), grad(p[bb+1], x-1, y-1, z-1)))
	return lerp(w, near, far)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad picks one of 12 gradient directions from the low hash bits.
func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := z
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
