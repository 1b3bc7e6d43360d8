package terrain

// cellRandom – детерминированный поток псевдослучайных чисел для одной клетки.
// Состояние живёт только на стеке вызова, глобального генератора нет.
type cellRandom struct {
	state uint64
}

// newCellRandom создаёт поток для клетки (x, y) мира с сидом seed
func newCellRandom(x, y int, seed int64) cellRandom {
	return cellRandom{state: uint64(int64(x)*10000 + int64(y) + seed)}
}

// next возвращает следующее значение SplitMix64
func (r *cellRandom) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Float64 возвращает значение в [0, 1)
func (r *cellRandom) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}
