package game

import (
	"math"
	"testing"
)

// 校准模型：对 Saboteur 的"可疑"率应接近 0.7，对其他身份接近 0.2
// 10000 次采样下 ±0.02 的容差对应远超 95% 的置信水平
func TestInvestigateHint_CalibratedRates(t *testing.T) {
	const trials = 10000
	const tolerance = 0.02

	cases := []struct {
		role string
		want float64
	}{
		{ROLE_SABOTEUR, SUSPICIOUS_PROB_SABOTEUR},
		{ROLE_DECOY, SUSPICIOUS_PROB_OTHER},
		{ROLE_INVESTIGATOR, SUSPICIOUS_PROB_OTHER},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			suspicious := 0

			for i := 0; i < trials; i++ {
				if investigateHint(tc.role) {
					suspicious++
				}
			}

			got := float64(suspicious) / trials

			if math.Abs(got-tc.want) > tolerance {
				t.Fatalf("suspicious rate for %s = %.4f, want %.2f±%.2f", tc.role, got, tc.want, tolerance)
			}
		})
	}
}

func TestPickInvestigationTarget_NeverPicksSelf(t *testing.T) {
	ctx := newPlayingContext([]string{ROLE_SABOTEUR, ROLE_DECOY, ROLE_INVESTIGATOR})

	for i := 0; i < 100; i++ {
		target := pickInvestigationTarget(ctx, 2)
		if target == nil {
			t.Fatalf("target should exist with other participants present")
		}

		if target.ID == 2 {
			t.Fatalf("investigation must not target the actor itself")
		}
	}
}

func TestPickInvestigationTarget_NilWhenAlone(t *testing.T) {
	ctx := newPlayingContext([]string{ROLE_SABOTEUR})

	if target := pickInvestigationTarget(ctx, 1); target != nil {
		t.Fatalf("lone participant should have no investigation target, got %d", target.ID)
	}
}

func TestInvestigate_DoesNotMutateState(t *testing.T) {
	ctx := newPlayingContext([]string{ROLE_SABOTEUR, ROLE_DECOY, ROLE_INVESTIGATOR})
	pph := newPlayingHandler(ctx)

	actor := ctx.Roster.Get(3)

	wrapper := ActionWrapper{ActorID: 3, ActionType: ACTION_INVESTIGATE}

	if _, err := pph.OnHandle(ctx, actor, wrapper); err != nil {
		t.Fatalf("investigate should succeed, got: %v", err)
	}

	if ctx.Phase != PHASE_PLAYING || ctx.SabotageUnitsCompleted != 0 || len(ctx.Votes) != 0 {
		t.Fatalf("investigate must not mutate session state")
	}

	for _, p := range ctx.Roster.Active() {
		if p.Zone != ZONE_LAB {
			t.Fatalf("investigate must not move participants")
		}
	}
}
