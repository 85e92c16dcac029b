package synthesis

import (
	"math"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/verdict"
)

// consensusConfidenceBase anchors verdict confidence on how aligned the
// council was; the mean specialist confidence of materially relevant
// opinions tops it up.
var consensusConfidenceBase = map[verdict.Consensus]float64{
	verdict.ConsensusUnanimous:   0.9,
	verdict.ConsensusMajority:    0.75,
	verdict.ConsensusSingleClaim: 0.7,
	verdict.ConsensusNoClaim:     0.6,
	verdict.ConsensusSplit:       0.5,
}

const specialistConfidenceWeight = 0.1

// computeConfidence produces the verdict confidence in [0,1]
func computeConfidence(consensus verdict.Consensus, opinions []opinion.Opinion) float64 {
	conf := consensusConfidenceBase[consensus]

	sum, n := 0.0, 0
	for _, op := range opinions {
		if op.RelevanceScore > materialRelevanceThreshold {
			sum += op.Confidence.Weight()
			n++
		}
	}
	if n > 0 {
		conf += specialistConfidenceWeight * (sum / float64(n))
	}

	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}

	return math.Round(conf*100) / 100
}
