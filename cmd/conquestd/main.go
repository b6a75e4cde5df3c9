package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/cordial-conquest/internal/command"
	"github.com/freeeve/cordial-conquest/internal/config"
	"github.com/freeeve/cordial-conquest/internal/logger"
	"github.com/freeeve/cordial-conquest/internal/repository/postgres"
	redisrepo "github.com/freeeve/cordial-conquest/internal/repository/redis"
	"github.com/freeeve/cordial-conquest/internal/service"
	"github.com/freeeve/cordial-conquest/pkg/conquest"
)

func main() {
	logger.Init()
	cfg := config.Load()

	if err := run(context.Background(), cfg); err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	mapData, err := os.ReadFile(cfg.MapPath)
	if err != nil {
		return fmt.Errorf("read map: %w", err)
	}
	world, state, err := conquest.ParseWorld(mapData)
	if err != nil {
		return err
	}
	rulesData, err := os.ReadFile(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("read rules: %w", err)
	}
	rules, err := conquest.ParseRules(rulesData)
	if err != nil {
		return err
	}
	log.Info().Int("territories", len(world.Territories)).
		Int("parts", len(world.Parts)).
		Int("players", len(state.Players)).
		Msg("Map loaded")

	deps := service.Deps{Deadline: cfg.PhaseDeadline}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		deps.Phases = postgres.NewPhaseRepo(db)
		deps.Press = postgres.NewPressRepo(db)
	}

	var redisClient *redisrepo.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisClient.Close()
		// Keyspace notifications drive deadline expiry events.
		if err := redisClient.Underlying().ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
			log.Warn().Err(err).Msg("Failed to set Redis keyspace notifications (timer expiry may not work)")
		}
		deps.Cache = redisClient
	}

	gameID := os.Getenv("GAME_ID")
	sess, recovered, err := service.Recover(ctx, gameID, world, rules, deps)
	if err != nil {
		return err
	}
	if !recovered {
		sess = service.NewSession(gameID, conquest.NewGame(world, state, rules), deps)
	}

	if data, err := os.ReadFile(cfg.LogPath); err == nil {
		if err := json.Unmarshal(data, sess.Game().Log); err != nil {
			return fmt.Errorf("read phase log: %w", err)
		}
	}

	if redisClient != nil && cfg.PhaseDeadline > 0 {
		listenerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go service.NewTimerListener(redisClient.Underlying(), sess).Start(listenerCtx)
	}

	c := &console{
		sess:      sess,
		cfg:       cfg,
		mapData:   mapData,
		rulesData: rulesData,
		out:       os.Stdout,
	}
	return c.loop(ctx, os.Stdin)
}

// console drives the session from line-oriented input, one command per
// line, answers on stdout.
type console struct {
	sess      *service.GameSession
	cfg       *config.Config
	mapData   []byte
	rulesData []byte
	out       io.Writer
}

func (c *console) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		cmd, err := command.Parse(scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			continue
		}
		if cmd == nil {
			continue
		}
		if err := c.dispatch(ctx, cmd); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if c.sess.Game().Finished() {
			break
		}
	}
	return scanner.Err()
}

func (c *console) dispatch(ctx context.Context, cmd *command.Command) error {
	switch cmd.Kind {
	case command.CmdOrder:
		return c.sess.SubmitOrder(ctx, cmd.Player, cmd.Order)
	case command.CmdDraw:
		if err := c.sess.SetDraw(ctx, cmd.Player, cmd.Vote); err != nil {
			return err
		}
		if c.sess.Game().Rules.VoteShown {
			fmt.Fprintf(c.out, "draw votes: %s\n", strings.Join(c.sess.DrawVotes(), " "))
		}
		return nil
	case command.CmdPress:
		return c.sess.Press(ctx, cmd.Player, cmd.To, cmd.Message)
	case command.CmdPressRead:
		for _, line := range c.sess.PressFor(cmd.To) {
			fmt.Fprintln(c.out, line)
		}
		return nil
	case command.CmdMap:
		fmt.Fprintln(c.out, string(c.mapData))
		return nil
	case command.CmdRules:
		fmt.Fprintln(c.out, string(c.rulesData))
		return nil
	case command.CmdPhase:
		c.printPhase()
		return nil
	case command.CmdReady:
		if err := c.sess.MarkReady(ctx, cmd.Player); err != nil {
			return err
		}
		if c.sess.AllReady() {
			return c.resolve(ctx)
		}
		return nil
	case command.CmdResolve:
		return c.resolve(ctx)
	default:
		return fmt.Errorf("unhandled command kind %d", cmd.Kind)
	}
}

func (c *console) resolve(ctx context.Context) error {
	results, err := c.sess.ResolvePhase(ctx)
	if err != nil {
		return err
	}

	g := c.sess.Game()
	for _, r := range results {
		fmt.Fprintf(c.out, "%s: %s\n", r.Order.Describe(g.World), r.Result)
	}
	c.printPhase()
	c.saveLog()
	return nil
}

// printPhase writes the phase banner plus whatever the entered phase
// needs from the players: retreat options, or build and disband counts.
func (c *console) printPhase() {
	g := c.sess.Game()
	fmt.Fprintf(c.out, "== %s ==\n", g.Phase)

	switch g.Phase.Kind {
	case conquest.PhaseRetreat:
		for _, d := range g.State.Dislodged {
			opts := conquest.RetreatOptions(d, g.State, g.World)
			names := make([]string, 0, len(opts))
			for _, p := range opts {
				names = append(names, g.World.PartName(p))
			}
			fmt.Fprintf(c.out, "%s %s retreats: %s\n",
				g.State.Players[d.Player].Name, g.World.PartName(d.From), strings.Join(names, " "))
		}
	case conquest.PhaseBuild:
		for pl := range g.State.Players {
			delta := conquest.BuildDelta(conquest.PlayerID(pl), g.State, g.World)
			name := g.State.Players[pl].Name
			switch {
			case delta > 0:
				parts := conquest.EligibleBuildParts(conquest.PlayerID(pl), g.State, g.World, g.Rules)
				names := make([]string, 0, len(parts))
				for _, p := range parts {
					names = append(names, g.World.PartName(p))
				}
				fmt.Fprintf(c.out, "%s builds %d: %s\n", name, delta, strings.Join(names, " "))
			case delta < 0:
				fmt.Fprintf(c.out, "%s disbands %d\n", name, -delta)
			}
		}
	case conquest.PhaseDone:
		c.printOutcome()
	}
}

func (c *console) printOutcome() {
	g := c.sess.Game()
	if g.Drawn {
		fmt.Fprintln(c.out, "game drawn")
		for _, sh := range conquest.SplitCenters(g.State, g.World, g.Rules.DrawType) {
			fmt.Fprintf(c.out, "%s: %g\n", g.State.Players[sh.Player].Name, sh.Share)
		}
		return
	}
	if g.Winner != conquest.NoPlayer {
		fmt.Fprintf(c.out, "winner: %s\n", g.State.Players[g.Winner].Name)
	}
}

func (c *console) saveLog() {
	data, err := json.Marshal(c.sess.Game().Log)
	if err != nil {
		log.Error().Err(err).Msg("Phase log encode failed")
		return
	}
	if err := os.WriteFile(c.cfg.LogPath, data, 0o644); err != nil {
		log.Error().Err(err).Str("path", c.cfg.LogPath).Msg("Phase log write failed")
	}
}
