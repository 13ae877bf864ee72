package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/peterkuimelis/versusbattle/internal/game"
)

// errQuit ends the REPL when the player types "q" or input runs out.
var errQuit = errors.New("quit")

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn   net.Conn
	in     *bufio.Reader
	out    io.Writer
	mode   string
	health int

	inMove bool       // a choose_move prompt is open
	state  *StateView // last state received
}

// NewClient creates a client that reads commands from in and renders to out.
func NewClient(in io.Reader, out io.Writer, mode string, health int) *Client {
	return &Client{
		in:     bufio.NewReader(in),
		out:    out,
		mode:   mode,
		health: health,
	}
}

// Connect dials a server and runs the REPL.
func Connect(ctx context.Context, addr string, client *Client) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	client.conn = conn
	return client.Run(ctx)
}

// Run joins a match and handles server messages interactively until the
// player quits or the server goes away.
func (c *Client) Run(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	join := ClientMessage{Type: MsgJoin, Mode: c.mode, Health: c.health}
	if err := enc.Encode(join); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	fmt.Fprintln(c.out, "Connected! Dealing cards...")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		var reply *ClientMessage
		switch msg.Type {
		case MsgNotify:
			c.inMove = false
			c.renderEvent(msg.Event)
			continue

		case MsgChooseMove:
			c.inMove = true
			c.state = msg.State
			c.renderState(msg.State)
			if msg.State != nil && msg.State.InvalidMove {
				fmt.Fprintln(c.out, "That is not a valid combination. Try again.")
			}

		case MsgHint:
			c.renderHint(msg.Indices)

		case MsgError:
			fmt.Fprintf(c.out, "Error: %s\n", msg.Result)
			if !c.inMove {
				return fmt.Errorf("server rejected request: %s", msg.Result)
			}

		case MsgGameOver:
			c.inMove = false
			c.renderGameOver(msg)
			fmt.Fprint(c.out, "\nPlay again? (y/n): ")
			if !c.readYesNo() {
				return nil
			}
			reply = &join

		default:
			continue
		}

		if reply == nil {
			move, err := c.readMove()
			if errors.Is(err, errQuit) {
				return nil
			}
			reply = &move
		}
		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("send %s: %w", reply.Type, err)
		}
	}
}

// readMove prompts until the player enters a play, a skip or a hint request.
func (c *Client) readMove() (ClientMessage, error) {
	count := 0
	if c.state != nil {
		count = len(c.state.You.Hand)
	}
	for {
		fmt.Fprint(c.out, "Cards to play (e.g. 1 2 3), s=skip, h=hint, q=quit > ")
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			return ClientMessage{}, errQuit
		}
		line = strings.ToLower(strings.TrimSpace(line))

		switch line {
		case "":
			continue
		case "s", "skip":
			return ClientMessage{Type: MsgSkip}, nil
		case "h", "hint":
			return ClientMessage{Type: MsgHint}, nil
		case "q", "quit":
			return ClientMessage{}, errQuit
		}

		indices, err := parseIndices(line, count)
		if err != nil {
			fmt.Fprintln(c.out, err)
			continue
		}
		return ClientMessage{Type: MsgPlay, Indices: indices}, nil
	}
}

// parseIndices turns "1 3,4" into 0-based hand positions.
func parseIndices(line string, count int) ([]int, error) {
	parts := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })
	var indices []int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || (count > 0 && n > count) {
			return nil, fmt.Errorf("each number must be between 1 and %d", count)
		}
		indices = append(indices, n-1)
	}
	return indices, nil
}

func (c *Client) readYesNo() bool {
	for {
		line, err := c.in.ReadString('\n')
		line = strings.TrimSpace(strings.ToLower(line))
		switch line {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			return false
		}
		fmt.Fprint(c.out, "Enter y or n: ")
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	phase := ev.Phase
	for len(phase) < 16 {
		phase += " "
	}
	fmt.Fprintf(c.out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderHint(indices []int) {
	if len(indices) == 0 {
		fmt.Fprintln(c.out, "Hint: no valid combination, skip this turn.")
		return
	}
	var names []string
	for _, idx := range indices {
		label := strconv.Itoa(idx + 1)
		if c.state != nil && idx < len(c.state.You.Hand) {
			label += " " + c.state.You.Hand[idx].Name
		}
		names = append(names, "["+label+"]")
	}
	fmt.Fprintf(c.out, "Hint: play %s\n", strings.Join(names, " "))
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	w := c.out

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	if sv.Mode == ModeAdventure {
		fmt.Fprintf(w, "║  ADVENTURE  Level %d  (best %d)\n", sv.Level, sv.BestLevel)
	}
	opp := sv.Opponent
	fmt.Fprintf(w, "║  OPPONENT  HP %d/%d  Hand: %d\n", opp.HP, opp.MaxHP, opp.HandCount)
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	if sv.LastPlay != nil {
		fmt.Fprintf(w, "║  Last play: %s %s\n", sv.LastPlay.Shape, strings.Join(sv.LastPlay.Cards, ", "))
	} else {
		fmt.Fprintln(w, "║  Last play: -")
	}
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	you := sv.You
	fmt.Fprintf(w, "║  YOU  HP %d/%d  Hand: %d/%d  Deck: %d\n", you.HP, you.MaxHP, you.HandCount, game.MaxHandSize, sv.DeckCount)
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(w, turnInfo)

	if len(you.Hand) > 0 {
		fmt.Fprintf(w, "\nHand: ")
		for _, cv := range you.Hand {
			fmt.Fprintf(w, "[%d] %s  ", cv.Index+1, cv.Name)
		}
		fmt.Fprintln(w)
	}
}

func (c *Client) renderGameOver(msg ServerMessage) {
	w := c.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════")
	fmt.Fprintln(w, "          GAME OVER")
	fmt.Fprintln(w, "═══════════════════════════════════")
	if sv := msg.State; sv != nil {
		fmt.Fprintf(w, "%s (%s)  You %d HP, Opponent %d HP\n", sv.Result, sv.EndReason, sv.You.HP, sv.Opponent.HP)
	}
	fmt.Fprintln(w, msg.Result)
	fmt.Fprintln(w, "═══════════════════════════════════")
}
