package filters

// ReplaySignals are the per-frame observations the replay heuristic reads.
// Detector-derived fields are only meaningful when HasPersons is set;
// PrevPersons < 0 means no earlier count is known.
type ReplaySignals struct {
	Transition  bool
	NearStatic  bool
	GreenRatio  float64
	HasPersons  bool
	Persons     int
	PrevPersons int
}

// IsReplay flags a cut into a replay or break. A hard cut is required, plus
// at least one secondary symptom: near-static picture, little grass, a
// collapse in visible players, or a close shot that is also near-static.
func IsReplay(s ReplaySignals, t Thresholds) bool {
	if !s.Transition {
		return false
	}

	if s.NearStatic || s.GreenRatio < t.MinGreenRatio {
		return true
	}

	if !s.HasPersons {
		return false
	}

	if s.PrevPersons > 0 && float64(s.Persons) < float64(s.PrevPersons)*t.PlayerDropRatio {
		return true
	}

	return s.Persons <= t.CloseShotMaxCount && s.NearStatic
}

// IsLivePlay reports whether a frame shows usable live action.
func IsLivePlay(p Presence, greenRatio float64, t Thresholds) bool {
	if p.Persons < t.LiveMinPersons {
		return false
	}
	if greenRatio < t.LiveMinGreenRatio {
		return false
	}
	return !t.LiveRequireBall || p.Ball
}
