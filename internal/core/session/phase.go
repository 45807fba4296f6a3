package session

// phase maps clock progress to path phase so the marker keeps its place when the
// speed multiplier changes mid-pattern.
type phase struct {
	base       float64
	anchor     float64
	multiplier float64
}

func (p phase) at(progress float64) float64 {
	multiplier := p.multiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	return p.base + (progress-p.anchor)*multiplier
}

func (p phase) retarget(progress, multiplier float64) phase {
	return phase{base: p.at(progress), anchor: progress, multiplier: multiplier}
}
