package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/peterkuimelis/versusbattle/internal/game"
)

// testSession starts ServeConn on one end of a pipe and returns the other end.
func testSession(t *testing.T, srv *Server) (*json.Encoder, *json.Decoder) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	go func() {
		_ = srv.ServeConn(ctx, serverConn)
	}()
	t.Cleanup(func() {
		clientConn.Close()
		cancel()
	})
	return json.NewEncoder(clientConn), json.NewDecoder(clientConn)
}

func testServer() *Server {
	return &Server{
		Store:     game.NewMemoryLevelStore(),
		Seed:      42,
		RunConfig: game.RunConfig{MaxTurns: 5000},
	}
}

// next reads messages until one of the wanted type arrives.
func next(t *testing.T, dec *json.Decoder, want string) ServerMessage {
	t.Helper()
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg
		}
		if msg.Type == MsgGameOver || msg.Type == MsgError {
			t.Fatalf("waiting for %s, got %s: %s", want, msg.Type, msg.Result)
		}
	}
}

func send(t *testing.T, enc *json.Encoder, msg ClientMessage) {
	t.Helper()
	if err := enc.Encode(msg); err != nil {
		t.Fatalf("send %s: %v", msg.Type, err)
	}
}

func TestServeConnPlaysFullMatch(t *testing.T) {
	enc, dec := testSession(t, testServer())
	send(t, enc, ClientMessage{Type: MsgJoin, Mode: ModeVersus, Health: 500})

	var sawState, sawNotify bool
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		switch msg.Type {
		case MsgNotify:
			sawNotify = true
		case MsgChooseMove:
			sawState = true
			if !msg.State.IsYourTurn || msg.State.You.HP > 500 || msg.State.Opponent.Hand != nil {
				t.Fatalf("unexpected state %+v", msg.State)
			}
			send(t, enc, ClientMessage{Type: MsgHint})
		case MsgHint:
			if len(msg.Indices) == 0 {
				send(t, enc, ClientMessage{Type: MsgSkip})
			} else {
				send(t, enc, ClientMessage{Type: MsgPlay, Indices: msg.Indices})
			}
		case MsgError:
			t.Fatalf("server error: %s", msg.Result)
		case MsgGameOver:
			if !sawState || !sawNotify {
				t.Error("expected states and notifications before game over")
			}
			if msg.State == nil || msg.State.Phase != game.PhaseGameOver.String() {
				t.Fatalf("game over state = %+v", msg.State)
			}
			if msg.State.Result == game.ResultOngoing.String() || msg.Result == "" {
				t.Errorf("result = %q / %q", msg.State.Result, msg.Result)
			}
			return
		}
	}
}

func TestServeConnRejectsOutOfRangeIndex(t *testing.T) {
	enc, dec := testSession(t, testServer())
	send(t, enc, ClientMessage{Type: MsgJoin, Mode: ModeVersus})

	msg := next(t, dec, MsgChooseMove)
	if msg.State.You.MaxHP != game.DefaultVersusHealth || msg.State.Opponent.MaxHP != game.DefaultVersusHealth {
		t.Errorf("max hp = %d/%d, want default %d", msg.State.You.MaxHP, msg.State.Opponent.MaxHP, game.DefaultVersusHealth)
	}
	send(t, enc, ClientMessage{Type: MsgPlay, Indices: []int{99}})

	var reply ServerMessage
	if err := dec.Decode(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Type != MsgError || !strings.Contains(reply.Result, "out of range") {
		t.Fatalf("got %s %q, want out-of-range error", reply.Type, reply.Result)
	}

	// Still the same prompt: a skip is accepted.
	send(t, enc, ClientMessage{Type: MsgSkip})
	next(t, dec, MsgNotify)
}

func TestServeConnRejectsBadJoin(t *testing.T) {
	enc, dec := testSession(t, testServer())

	for _, join := range []ClientMessage{
		{Type: MsgSkip},
		{Type: MsgJoin, Mode: "chess"},
		{Type: MsgJoin, Mode: ModeVersus, Health: 100},
	} {
		send(t, enc, join)
		var reply ServerMessage
		if err := dec.Decode(&reply); err != nil {
			t.Fatal(err)
		}
		if reply.Type != MsgError {
			t.Errorf("join %+v: got %s, want error", join, reply.Type)
		}
	}

	send(t, enc, ClientMessage{Type: MsgJoin, Mode: ModeAdventure})
	msg := next(t, dec, MsgChooseMove)
	if msg.State.Mode != ModeAdventure || msg.State.Level != 1 || msg.State.Opponent.HP != 500 {
		t.Errorf("adventure state = %+v", msg.State)
	}
}

func TestServeConnEndsOnDisconnect(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- testServer().ServeConn(context.Background(), serverConn)
	}()

	enc := json.NewEncoder(clientConn)
	dec := json.NewDecoder(clientConn)
	send(t, enc, ClientMessage{Type: MsgJoin, Mode: ModeVersus})
	next(t, dec, MsgChooseMove)
	clientConn.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeConn = %v, want nil on disconnect", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ServeConn did not return")
	}
}

func TestPlayLocalHintThenQuit(t *testing.T) {
	var out bytes.Buffer
	client := NewClient(strings.NewReader("h\nq\n"), &out, ModeVersus, 800)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := testServer().PlayLocal(ctx, client); err != nil {
		t.Fatalf("PlayLocal: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Your turn", "HP 800/800", "Hint:"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestParseIndices(t *testing.T) {
	got, err := parseIndices("1 3,4", 8)
	if err != nil || len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 3 {
		t.Errorf("parseIndices = %v, %v", got, err)
	}
	for _, bad := range []string{"0", "9", "x"} {
		if _, err := parseIndices(bad, 8); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestGameOverText(t *testing.T) {
	snap := &game.Snapshot{Mode: game.ModeVersus, Result: game.ResultDefeat, EndReason: game.EndTooManyCards}
	if got := GameOverText(snap); !strings.Contains(got, "too many cards") {
		t.Errorf("got %q", got)
	}
	snap = &game.Snapshot{Mode: game.ModeAdventure, Result: game.ResultVictory, Level: 3}
	if got := GameOverText(snap); !strings.Contains(got, "Level 3") {
		t.Errorf("got %q", got)
	}
}
