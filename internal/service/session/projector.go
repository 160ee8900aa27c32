package session

// Predict maps the last action pivot to a live position. This is the whole
// synchronization contract: clients never exchange current position, only
// the pivot, and every reader extrapolates from it.
//
// Predict does not clamp to track duration; a result past the known duration
// means the track is finished and the caller should take the advance path
// instead of seeking past the end.
func Predict(pivotTimeMs int64, pivotPosition float64, isPlaying bool, nowMs int64) float64 {
	if !isPlaying {
		return pivotPosition
	}

	elapsed := float64(nowMs-pivotTimeMs) / 1000
	if elapsed < 0 {
		elapsed = 0
	}

	return pivotPosition + elapsed
}
