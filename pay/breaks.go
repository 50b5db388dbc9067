package pay

import (
	"math"

	"github.com/warp/payroll-engine/generic"
)

// AutoBreakMinutes selects the break for a shift of windowMinutes raw length.
// Tiers are checked from the highest down and the first one reached wins;
// tiers never add up (an 8 h shift gets the 8 h tier only).
func AutoBreakMinutes(cfg AutoBreakConfig, windowMinutes int) int {
	if !cfg.Enabled {
		return 0
	}
	for i := len(cfg.Tiers) - 1; i >= 0; i-- {
		tier := cfg.Tiers[i]
		if windowMinutes >= tierMinutes(tier) {
			return tier.Minutes
		}
	}
	return 0
}

func tierMinutes(t BreakTier) int { return int(math.Round(t.AfterHours * 60)) }

func validateTiers(cfg AutoBreakConfig) error {
	prev := -1
	for i, t := range cfg.Tiers {
		m := tierMinutes(t)
		if t.AfterHours < 0 || t.Minutes < 0 {
			return generic.Invalid(generic.ReasonInvalidBreakTier, "auto_break.tiers",
				"tier %d must not be negative", i+1)
		}
		if m < prev {
			return generic.Invalid(generic.ReasonInvalidBreakTier, "auto_break.tiers",
				"tier %d threshold %.2fh is below the previous tier", i+1, t.AfterHours)
		}
		prev = m
	}
	return nil
}

// resolvedBreak is the outcome of break resolution.
type resolvedBreak struct {
	minutes int
	auto    bool
}

// resolveBreak applies the priority window > explicit minutes > automatic.
// from/to is the shift span in minutes since midnight of the shift date.
func resolveBreak(shift ShiftInput, cfg AutoBreakConfig, from, to int) (resolvedBreak, error) {
	window := to - from

	switch shift.Break.mode {
	case BreakWindow:
		bs, be := int(shift.Break.start), int(shift.Break.end)
		// Overnight shifts may take their break after midnight.
		if shift.EndsNextDay && bs < from {
			bs += int(generic.EndOfDay)
		}
		if shift.EndsNextDay && be < from {
			be += int(generic.EndOfDay)
		}
		if be < bs {
			return resolvedBreak{}, generic.Invalid(generic.ReasonBreakInverted, "break_end",
				"break ends %s before it starts %s", shift.Break.end, shift.Break.start)
		}
		if bs < from || be > to {
			return resolvedBreak{}, generic.Invalid(generic.ReasonBreakOutsideShift, "break_start",
				"break %s–%s is outside the shift", shift.Break.start, shift.Break.end)
		}
		return resolvedBreak{minutes: be - bs}, nil

	case BreakRecorded:
		if shift.Break.minutes < 0 {
			return resolvedBreak{}, generic.Invalid(generic.ReasonNegativeWorked, "break_minutes",
				"recorded break of %d minutes", shift.Break.minutes)
		}
		return resolvedBreak{minutes: shift.Break.minutes}, nil

	case BreakMinutes:
		if shift.Break.minutes > 0 {
			return resolvedBreak{minutes: shift.Break.minutes}, nil
		}
	}

	if !cfg.Enabled {
		return resolvedBreak{}, nil
	}
	return resolvedBreak{minutes: AutoBreakMinutes(cfg, window), auto: true}, nil
}
