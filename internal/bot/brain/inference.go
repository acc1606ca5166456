package brain

import (
	"dominoes/internal/domain"
)

// Estimator provides probabilistic insights based on memory.
type Estimator struct {
	Memory *GameMemory
}

// NewEstimator creates a new reasoning engine.
func NewEstimator(m *GameMemory) *Estimator {
	return &Estimator{Memory: m}
}

// UnseenWithPip counts tiles carrying the pip whose location is unknown.
func (e *Estimator) UnseenWithPip(pip int) int {
	count := 0
	for _, t := range domain.NewTileSet() {
		if t.HasPip(pip) && !e.Memory.IsAccounted(t) {
			count++
		}
	}
	return count
}

// OpponentVoidConfidence returns a 0.0 to 1.0 chance that the seat holds
// no tile carrying the pip. A recorded void starts at full confidence
// and decays with every draw the seat has made since, because any drawn
// tile could carry the pip again.
func (e *Estimator) OpponentVoidConfidence(seat, pip int) float64 {
	p, ok := e.Memory.Opponents[seat]
	if !ok {
		return 0.0
	}
	recordedAt, ok := p.Voids[pip]
	if !ok {
		return 0.0
	}
	drawsSince := p.Draws - recordedAt
	if drawsSince < 0 {
		drawsSince = 0
	}
	return 1.0 / float64(1+drawsSince)
}

// EndScarcity returns a 0.0 to 1.0 score for how hard the pip is to
// answer from the unseen pool. 1.0 means every tile with this pip is
// already accounted for.
func (e *Estimator) EndScarcity(pip int) float64 {
	unseen := e.UnseenWithPip(pip)
	return 1.0 - float64(unseen)/float64(domain.MaxPip+1)
}

// BlockScore rates how hostile leaving the open ends (left, right) is
// for the given seat. Recorded voids dominate; scarce pips add a
// smaller bias even without behavioural evidence.
func (e *Estimator) BlockScore(seat, left, right int) float64 {
	voids := (e.OpponentVoidConfidence(seat, left) + e.OpponentVoidConfidence(seat, right)) / 2
	scarcity := (e.EndScarcity(left) + e.EndScarcity(right)) / 2
	if left == right {
		voids = e.OpponentVoidConfidence(seat, left)
		scarcity = e.EndScarcity(left)
	}
	return voids + 0.3*scarcity
}

// ExpectedPipCount estimates the pip total of a hidden hand of the given
// size, assuming it is drawn uniformly from the unseen pool.
func (e *Estimator) ExpectedPipCount(handSize int) float64 {
	if handSize <= 0 {
		return 0.0
	}
	total, count := 0, 0
	for _, t := range domain.NewTileSet() {
		if !e.Memory.IsAccounted(t) {
			total += t.Sum()
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return float64(total) / float64(count) * float64(handSize)
}

// LikelyBlocked returns true when the seat is believed unable to answer
// either end right now.
func (e *Estimator) LikelyBlocked(seat, left, right int) bool {
	const threshold = 0.9
	if left == right {
		return e.OpponentVoidConfidence(seat, left) >= threshold
	}
	return e.OpponentVoidConfidence(seat, left) >= threshold &&
		e.OpponentVoidConfidence(seat, right) >= threshold
}
