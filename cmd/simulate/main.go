package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"recall-server/internal/rng"
	"recall-server/internal/util"
	"recall-server/pkg/ai"
	"recall-server/pkg/deck"
	"recall-server/pkg/recall"
)

type simOptions struct {
	players      int
	difficulties string
	seed         int64
	games        int
	deckPath     string
	aiPath       string
	jokers       bool
	maxSteps     int
	check        bool
	logLevel     string
}

var opts simOptions

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "plays matches between computer players",
	Long:  `simulate plays matches between computer players on a virtual clock and prints the results`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(opts.logLevel)
		if err != nil {
			return err
		}

		logger := logrus.New()
		logger.SetLevel(level)
		logger.SetOutput(os.Stderr)

		out := cmd.OutOrStdout()
		width := 0
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if w, _, err := term.GetSize(int(f.Fd())); err == nil {
				width = w
			}
		}

		stats, err := simulate(logger, opts, out, width)
		if err != nil {
			return err
		}

		stats.print(out)
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&opts.players, "players", 4, "number of computer players")
	f.StringVar(&opts.difficulties, "difficulty", "medium", "comma separated difficulties, assigned to the seats in turn")
	f.Int64Var(&opts.seed, "seed", 0, "random seed, 0 seeds from the current time")
	f.IntVar(&opts.games, "games", 1, "number of matches to play")
	f.StringVar(&opts.deckPath, "deck", "", "deck configuration file")
	f.StringVar(&opts.aiPath, "ai", "", "computer player configuration file")
	f.BoolVar(&opts.jokers, "jokers", true, "include jokers")
	f.IntVar(&opts.maxSteps, "max-steps", 100000, "the most scheduled tasks a single match may run")
	f.BoolVar(&opts.check, "check", false, "verify the state invariants after every step")
	f.StringVar(&opts.logLevel, "logLevel", "warn", "log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type stats struct {
	games  int
	turns  int
	wins   map[recall.Difficulty]int
	seats  map[recall.Difficulty]int
	reason map[string]int
}

// simulate plays opts.games matches and writes a line per match to out
// Separator lines are drawn width characters wide when width is positive
func simulate(logger logrus.FieldLogger, opts simOptions, out io.Writer, width int) (*stats, error) {
	difficulties, err := parseDifficulties(opts.difficulties)
	if err != nil {
		return nil, err
	}

	if opts.players < recall.MinPlayers || opts.players > recall.MaxPlayers {
		return nil, recall.PlayerCountError{Min: recall.MinPlayers, Max: recall.MaxPlayers, Got: opts.players}
	}

	gen := rng.NewSeeded(opts.seed)
	decider, err := ai.NewEngine(logger, ai.LoadConfigWithFallback(logger, opts.aiPath), gen)
	if err != nil {
		return nil, err
	}

	st := &stats{
		wins:   make(map[recall.Difficulty]int),
		seats:  make(map[recall.Difficulty]int),
		reason: make(map[string]int),
	}

	for game := 1; game <= opts.games; game++ {
		res, err := playMatch(logger, opts, fmt.Sprintf("sim-%d", game), difficulties, decider, gen)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", game, err)
		}

		st.add(res)

		if width > 0 {
			fmt.Fprintln(out, strings.Repeat("-", width))
		}

		fmt.Fprintf(out, "%s: %d turns, %s\n", res.MatchID, res.Turns, res.Reason)
		for _, p := range res.Players {
			marker := " "
			if p.Winner {
				marker = "*"
			}

			fmt.Fprintf(out, "  %s %-24s %-7s %3d  %s\n", marker, p.DisplayName, p.Difficulty, p.Score, deck.CardsToString(p.Hand))
		}
	}

	return st, nil
}

func playMatch(logger logrus.FieldLogger, opts simOptions, matchID string, difficulties []recall.Difficulty, decider recall.Decider, gen rng.Generator) (*recall.Result, error) {
	build := deck.BuildDeckWithFallback(logger, matchID, opts.deckPath, opts.jokers)

	players := make([]*recall.Player, 0, opts.players)
	for i, name := range util.GetRandomNames(gen, opts.players) {
		players = append(players, recall.NewPlayer(recall.PlayerSpec{
			ID:          fmt.Sprintf("computer-%d", i+1),
			DisplayName: name,
			Difficulty:  difficulties[i%len(difficulties)],
		}))
	}

	roundOpts := recall.DefaultOptions()
	roundOpts.PredefinedHands = build.Config.PredefinedHands

	var result *recall.Result
	sched := recall.NewManualScheduler()
	r, err := recall.NewRound(logger, matchID, players, build.Cards, roundOpts, recall.Dependencies{
		Scheduler: sched,
		Decider:   decider,
		RNG:       gen,
		OnEnd: func(res *recall.Result) {
			result = res
		},
	})
	if err != nil {
		return nil, err
	}

	if err := r.Start(); err != nil {
		return nil, err
	}

	for steps := 0; result == nil; steps++ {
		if steps >= opts.maxSteps {
			return nil, fmt.Errorf("no result after %d steps", steps)
		}

		if !sched.RunNext() {
			return nil, fmt.Errorf("stalled in phase %s", r.State().Phase)
		}

		if opts.check {
			if err := r.State().CheckInvariants(); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func parseDifficulties(s string) ([]recall.Difficulty, error) {
	var difficulties []recall.Difficulty
	for _, part := range strings.Split(s, ",") {
		d, ok := recall.ParseDifficulty(strings.TrimSpace(part))
		if !ok {
			return nil, fmt.Errorf("unknown difficulty: %s", part)
		}

		difficulties = append(difficulties, d)
	}

	return difficulties, nil
}

func (s *stats) add(res *recall.Result) {
	s.games++
	s.turns += res.Turns
	s.reason[res.Reason]++

	for _, p := range res.Players {
		s.seats[p.Difficulty]++
		if p.Winner {
			s.wins[p.Difficulty]++
		}
	}
}

func (s *stats) print(out io.Writer) {
	if s.games == 0 {
		return
	}

	fmt.Fprintf(out, "\n%d matches, %.1f turns on average\n", s.games, float64(s.turns)/float64(s.games))

	difficulties := make([]string, 0, len(s.seats))
	for d := range s.seats {
		difficulties = append(difficulties, string(d))
	}
	sort.Strings(difficulties)

	for _, d := range difficulties {
		diff := recall.Difficulty(d)
		fmt.Fprintf(out, "  %-7s %4d wins from %4d seats\n", d, s.wins[diff], s.seats[diff])
	}

	reasons := make([]string, 0, len(s.reason))
	for r := range s.reason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	for _, r := range reasons {
		fmt.Fprintf(out, "  %4d x %s\n", s.reason[r], r)
	}
}
