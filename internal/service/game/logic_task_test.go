package game

import "testing"

func startTaskWrapper(actorID int) ActionWrapper {
	return ActionWrapper{ActorID: actorID, ActionType: ACTION_START_TASK}
}

func completeTaskWrapper(actorID int, success bool) ActionWrapper {
	return ActionWrapper{
		ActorID:    actorID,
		ActionType: ACTION_COMPLETE_TASK,
		Payload:    mustMarshal(CompleteTaskAction{Success: success}),
	}
}

func TestTask_SaboteurEscapesAfterEnoughRepairs(t *testing.T) {
	ctx := newPlayingContext([]string{
		ROLE_SABOTEUR, ROLE_DECOY, ROLE_INVESTIGATOR, ROLE_INVESTIGATOR, ROLE_INVESTIGATOR,
	})
	pph := newPlayingHandler(ctx)

	const saboteurID = 1
	saboteur := ctx.Roster.Get(saboteurID)
	saboteur.Zone = ZONE_CRASH_SITE

	for i := 1; i <= 5; i++ {
		if _, err := pph.OnHandle(ctx, saboteur, startTaskWrapper(saboteurID)); err != nil {
			t.Fatalf("startTask %d should succeed, got: %v", i, err)
		}

		if _, err := pph.OnHandle(ctx, saboteur, completeTaskWrapper(saboteurID, true)); err != nil {
			t.Fatalf("completeTask %d should succeed, got: %v", i, err)
		}

		if ctx.SabotageUnitsCompleted != i {
			t.Fatalf("after task %d: completed = %d, want %d", i, ctx.SabotageUnitsCompleted, i)
		}

		wantPhase := PHASE_PLAYING
		if i == 5 {
			wantPhase = PHASE_ENDED
		}

		if ctx.Phase != wantPhase {
			t.Fatalf("after task %d: phase = %s, want %s", i, ctx.Phase, wantPhase)
		}
	}

	if ctx.Winner != WINNER_SABOTEUR_ESCAPED {
		t.Fatalf("winner = %q, want %q", ctx.Winner, WINNER_SABOTEUR_ESCAPED)
	}

	if ctx.SabotageUnitsCompleted > ctx.SabotageUnitsRequired {
		t.Fatalf("sabotage progress overflow: %d/%d", ctx.SabotageUnitsCompleted, ctx.SabotageUnitsRequired)
	}
}

func TestTask_NeutralWhenNotSaboteurOrWrongZoneOrFailed(t *testing.T) {
	cases := []struct {
		name    string
		actorID int
		zone    string
		success bool
	}{
		{"investigator in eligible zone", 3, ZONE_WAREHOUSE, true},
		{"saboteur in neutral zone", 1, ZONE_SUBURBS, true},
		{"saboteur failed the task", 1, ZONE_LAB, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newPlayingContext([]string{
				ROLE_SABOTEUR, ROLE_DECOY, ROLE_INVESTIGATOR,
			})
			pph := newPlayingHandler(ctx)

			actor := ctx.Roster.Get(tc.actorID)
			actor.Zone = tc.zone

			if _, err := pph.OnHandle(ctx, actor, startTaskWrapper(tc.actorID)); err != nil {
				t.Fatalf("startTask should succeed, got: %v", err)
			}

			if _, err := pph.OnHandle(ctx, actor, completeTaskWrapper(tc.actorID, tc.success)); err != nil {
				t.Fatalf("completeTask should succeed, got: %v", err)
			}

			if ctx.SabotageUnitsCompleted != 0 {
				t.Fatalf("sabotage progress should not advance, got %d", ctx.SabotageUnitsCompleted)
			}

			if ctx.Phase != PHASE_PLAYING {
				t.Fatalf("neutral task must not end the game, phase = %s", ctx.Phase)
			}
		})
	}
}

func TestTask_CompleteWithoutOpenTaskRejected(t *testing.T) {
	ctx := newPlayingContext([]string{ROLE_SABOTEUR, ROLE_DECOY, ROLE_INVESTIGATOR})
	pph := newPlayingHandler(ctx)

	actor := ctx.Roster.Get(1)

	if _, err := pph.OnHandle(ctx, actor, completeTaskWrapper(1, true)); err != ErrNoOpenTask {
		t.Fatalf("completeTask without startTask should fail with ErrNoOpenTask, got: %v", err)
	}

	if ctx.SabotageUnitsCompleted != 0 {
		t.Fatalf("rejected completeTask must not mutate progress")
	}
}

func TestMove_RejectsUnknownZone(t *testing.T) {
	ctx := newPlayingContext([]string{ROLE_SABOTEUR, ROLE_DECOY, ROLE_INVESTIGATOR})
	pph := newPlayingHandler(ctx)

	actor := ctx.Roster.Get(2)

	wrapper := ActionWrapper{
		ActorID:    2,
		ActionType: ACTION_MOVE,
		Payload:    mustMarshal(MoveAction{Zone: "Moon Base"}),
	}

	if _, err := pph.OnHandle(ctx, actor, wrapper); err != ErrInvalidZone {
		t.Fatalf("move to unknown zone should fail with ErrInvalidZone, got: %v", err)
	}

	if actor.Zone != ZONE_LAB {
		t.Fatalf("rejected move must not change the zone, got %s", actor.Zone)
	}
}

func TestMove_UpdatesZoneAndEmitsEvent(t *testing.T) {
	ctx := newPlayingContext([]string{ROLE_SABOTEUR, ROLE_DECOY, ROLE_INVESTIGATOR})
	pph := newPlayingHandler(ctx)

	actor := ctx.Roster.Get(3)

	wrapper := ActionWrapper{
		ActorID:    3,
		ActionType: ACTION_MOVE,
		Payload:    mustMarshal(MoveAction{Zone: ZONE_AGENCY_HQ}),
	}

	ev, err := pph.OnHandle(ctx, actor, wrapper)
	if err != nil {
		t.Fatalf("move should succeed, got: %v", err)
	}

	if actor.Zone != ZONE_AGENCY_HQ {
		t.Fatalf("zone = %s, want %s", actor.Zone, ZONE_AGENCY_HQ)
	}

	if want := "player-3 moved to Agency HQ"; ev.Text != want {
		t.Fatalf("event text = %q, want %q", ev.Text, want)
	}
}
