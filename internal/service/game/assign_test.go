package game

import (
	"fmt"
	"testing"
)

func newLobbyContext(playerCount int) *SessionContext {
	roster := NewRoster()

	for i := 0; i < playerCount; i++ {
		roster.Join(fmt.Sprintf("player-%d", i+1), nil)
	}

	return &SessionContext{
		SessionID:             "test-session",
		Phase:                 PHASE_LOBBY,
		SabotageUnitsRequired: 5,
		Roster:                roster,
		Votes:                 make(map[int]int),
		OpenTasks:             make(map[int]bool),
	}
}

func TestAssignRoles_ExactlyOneSaboteurOneDecoy(t *testing.T) {
	for n := 3; n <= 10; n++ {
		// 多次发牌，保证每种人数下结构性质都成立
		for trial := 0; trial < 20; trial++ {
			ctx := newLobbyContext(n)

			if err := assignRoles(ctx); err != nil {
				t.Fatalf("assignRoles with %d players should succeed, got: %v", n, err)
			}

			var saboteurs, decoys, investigators int

			for _, p := range ctx.Roster.Active() {
				switch p.Role {
				case ROLE_SABOTEUR:
					saboteurs++
				case ROLE_DECOY:
					decoys++
				case ROLE_INVESTIGATOR:
					investigators++
				default:
					t.Fatalf("participant %d has unexpected role %q", p.ID, p.Role)
				}

				if !IsValidZone(p.Zone) {
					t.Fatalf("participant %d has invalid start zone %q", p.ID, p.Zone)
				}
			}

			if saboteurs != 1 || decoys != 1 || investigators != n-2 {
				t.Fatalf(
					"n=%d: got %d saboteurs, %d decoys, %d investigators",
					n, saboteurs, decoys, investigators,
				)
			}
		}
	}
}

func TestAssignRoles_InitializesSessionState(t *testing.T) {
	ctx := newLobbyContext(5)
	ctx.SabotageUnitsCompleted = 3
	ctx.Votes[1] = 2
	ctx.Winner = WINNER_INVESTIGATORS

	if err := assignRoles(ctx); err != nil {
		t.Fatalf("assignRoles should succeed, got: %v", err)
	}

	if ctx.Round != 1 {
		t.Fatalf("round = %d, want 1", ctx.Round)
	}

	if ctx.SabotageUnitsCompleted != 0 {
		t.Fatalf("sabotage progress should reset to 0, got %d", ctx.SabotageUnitsCompleted)
	}

	if len(ctx.Votes) != 0 {
		t.Fatalf("votes should be empty after assignment, got %d entries", len(ctx.Votes))
	}

	if ctx.Winner != "" {
		t.Fatalf("winner should be cleared, got %q", ctx.Winner)
	}
}

func TestAssignRoles_RequiresThreePlayers(t *testing.T) {
	ctx := newLobbyContext(2)

	if err := assignRoles(ctx); err != ErrInsufficientPlayers {
		t.Fatalf("assignRoles with 2 players should fail with ErrInsufficientPlayers, got: %v", err)
	}

	for _, p := range ctx.Roster.Active() {
		if p.Role != ROLE_UNSET {
			t.Fatalf("failed assignment must not deal roles, participant %d has %q", p.ID, p.Role)
		}
	}
}
