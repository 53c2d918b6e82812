package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"seabattle/internal/bot"
	"seabattle/internal/config"
	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/session"
	"seabattle/internal/store"

	log "github.com/sirupsen/logrus"
)

const you = "you"

// terminal prints the messages addressed to the human side.
type terminal struct{}

func (terminal) Send(id string, msg session.Message) error {
	switch d := msg.Data.(type) {
	case session.LobbyCreated:
		fmt.Printf("Opponent: %s\n", d.Opponent)
	case session.GameStarted:
		if d.AttackFirst {
			fmt.Println("You fire first.")
		} else {
			fmt.Println("The opponent fires first.")
		}
	case session.MoveResult:
		fmt.Printf("Strike at %s: %s\n", label(d.Cell), d.Status)
	case session.EndGame:
		if d.Win {
			fmt.Printf("\nYou won! Score: %d\n", d.Score)
		} else {
			fmt.Printf("\nYou lost. Score: %d\n", d.Score)
		}
	case session.ErrorNotice:
		fmt.Println("!", d.Reason)
	}
	return nil
}

func (terminal) IsConnected(string) bool { return true }
func (terminal) Close(string, string)    {}

func label(c game.Cell) string {
	return fmt.Sprintf("%c%d", 'A'+c.Col, c.Row+1)
}

func parseCell(s string) (game.Cell, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || s[0] < 'A' || s[0] > 'Z' {
		return game.Cell{}, fmt.Errorf("want a cell like B7, got %q", s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return game.Cell{}, fmt.Errorf("want a cell like B7, got %q", s)
	}
	return game.Cell{Row: row - 1, Col: int(s[0] - 'A')}, nil
}

var glyphs = map[game.CellStatus]string{
	game.Empty:      ".",
	game.ShipCell:   "#",
	game.Hit:        "x",
	game.Miss:       "o",
	game.Destructed: "X",
}

func printBoards(own *game.Board, enemy game.Field) {
	n := own.Size()
	header := "   "
	for c := 0; c < n; c++ {
		header += fmt.Sprintf("%c ", 'A'+c)
	}
	fmt.Printf("\n%s   %s\n", header, header)
	for r := 0; r < n; r++ {
		line := fmt.Sprintf("%2d ", r+1)
		for c := 0; c < n; c++ {
			line += glyphs[own.Status(game.Cell{Row: r, Col: c})] + " "
		}
		line += fmt.Sprintf("  %2d ", r+1)
		for c := 0; c < n; c++ {
			line += glyphs[enemy.At(game.Cell{Row: r, Col: c})] + " "
		}
		fmt.Println(line)
	}
}

func main() {
	cfg := config.Load()
	cfg.SetupLogging()
	if cfg.LogLevel == "info" {
		log.SetLevel(log.WarnLevel)
	}
	fleet, err := cfg.Fleet()
	if err != nil {
		log.WithError(err).Fatal("invalid fleet configuration")
	}
	if fleet.Size > 26 {
		log.Fatal("console boards are limited to 26 columns")
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	users := store.NewMemoryStore()
	u, err := users.Register(ctx, store.User{Login: you, PasswordHash: "-"})
	if err != nil {
		log.WithError(err).Fatal("can't create local user")
	}

	svc := session.NewService(terminal{}, users, session.Options{
		Fleet:   fleet,
		Rules:   cfg.Rules,
		BotName: cfg.Bot.Name,
		NewPolicy: func() player.Policy {
			p, err := bot.NewPolicy(cfg.Bot.Policy, rng)
			if err != nil {
				log.WithError(err).Fatal("invalid bot configuration")
			}
			return p
		},
	})
	driver := bot.NewDriver(svc, cfg.Bot.Interval)

	human := player.NewHuman(u, svc.NewBoard())
	sess, err := svc.PlayBot(ctx, human)
	if err != nil {
		log.WithError(err).Fatal("can't start a match")
	}
	layout, err := game.RandomLayout(fleet, rng)
	if err != nil {
		log.WithError(err).Fatal("can't place your fleet")
	}
	if err := svc.AcceptField(ctx, you, layout); err != nil {
		log.WithError(err).Fatal("can't place your fleet")
	}

	in := bufio.NewScanner(os.Stdin)
	for sess.Status() == session.Active {
		if driver.Tick(ctx) > 0 {
			continue
		}
		printBoards(human.Board, sess.Second().Board.Field())
		fmt.Print("Fire at (e.g. B7, q to quit): ")
		if !in.Scan() {
			break
		}
		text := strings.TrimSpace(in.Text())
		if text == "q" {
			break
		}
		cell, err := parseCell(text)
		if err != nil {
			fmt.Println(err)
			continue
		}
		_ = svc.Move(ctx, you, cell)
	}
	if sess.Status() == session.Active {
		svc.Leave(ctx, you)
		fmt.Println("Match abandoned.")
	}
}
