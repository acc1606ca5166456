package bot

import botinternal "dominoes/internal/bot/internal"

const finishBonus = 1000.0

// DefaultTuning balances pip shedding and hand flexibility by phase.
var DefaultTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		PipReductionWeight: 1.0,
		FlexibilityWeight:  2.0,
		DoubleDumpBonus:    4.0,
		EndRepeatPenalty:   1.0,
		BlockBonus:         0.5,
		FinishBonus:        finishBonus,
	},
	Mid: botinternal.PhaseWeights{
		PipReductionWeight: 1.4,
		FlexibilityWeight:  1.5,
		DoubleDumpBonus:    5.0,
		EndRepeatPenalty:   0.5,
		BlockBonus:         1.5,
		FinishBonus:        finishBonus,
	},
	End: botinternal.PhaseWeights{
		PipReductionWeight: 2.0,
		FlexibilityWeight:  0.8,
		DoubleDumpBonus:    6.0,
		EndRepeatPenalty:   0.0,
		BlockBonus:         3.0,
		FinishBonus:        finishBonus,
	},
	ThreatThreshold: 3,
}
