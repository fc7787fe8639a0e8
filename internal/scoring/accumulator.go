package scoring

// weightedAverage accumulates (weight, value) pairs and averages over only
// the pairs whose value is known, so missing inputs never drag a score to zero.
type weightedAverage struct {
	sum    float64
	weight float64
	used   int
}

func (a *weightedAverage) add(value *float64, weight float64) {
	if value == nil {
		return
	}
	a.sum += *value * weight
	a.weight += weight
	a.used++
}

// result is nil when nothing was added.
func (a *weightedAverage) result() *float64 {
	if a.weight == 0 {
		return nil
	}
	return ptr(round2(a.sum / a.weight))
}
