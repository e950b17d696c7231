// Command societycli plays a scripted, fully deterministic game in the
// terminal: quick role assignment, then round-by-round society reports
// and a final standings table. Useful for balancing the economy
// constants without standing up the server.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jzheng/societygame/internal/engine"
	"github.com/jzheng/societygame/internal/game"
)

var (
	flagSeed    int64
	flagRounds  int
	flagPlayers int
	flagQuiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "societycli",
		Short: "Society dry-run simulator",
		Long: `Runs a complete Society game with automatic role assignment and
no player decisions, printing the society report each round and the
final scoreboard. Deterministic for a given seed.`,
		Run: runGame,
	}

	rootCmd.Flags().Int64Var(&flagSeed, "seed", 42, "random seed")
	rootCmd.Flags().IntVar(&flagRounds, "rounds", 50, "rounds to simulate")
	rootCmd.Flags().IntVar(&flagPlayers, "players", 10, "number of players")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "only print the final standings")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGame(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)
	headerColor := color.New(color.FgYellow, color.Bold)

	titleColor.Println("\n╭──────────────────────────╮")
	titleColor.Println("│  Society — Dry Run       │")
	titleColor.Println("╰──────────────────────────╯")
	fmt.Printf("seed=%d players=%d rounds=%d\n\n", flagSeed, flagPlayers, flagRounds)

	session := engine.NewSession(engine.Config{
		Players:   flagPlayers,
		MaxRounds: flagRounds,
		Seed:      flagSeed,
	})

	// Skip the campaign and ballot entirely.
	if err := session.QuickAssignRoles(); err != nil {
		fmt.Fprintf(os.Stderr, "role assignment: %v\n", err)
		os.Exit(1)
	}

	if !flagQuiet {
		headerColor.Println("Government:")
		printRoles(session)
		fmt.Println()
	}

	for session.Stage == game.StageRunning {
		round := session.TurnNumber
		if err := playRound(session); err != nil {
			fmt.Fprintf(os.Stderr, "round %d: %v\n", round, err)
			os.Exit(1)
		}
		if !flagQuiet {
			printSocietyReport(round, session)
		}
	}

	headerColor.Println("\nFinal Standings:")
	printStandings(session)

	snap := session.Snapshot()
	fmt.Printf("\nSociety finished with %s citizens and %s points after %d rounds.\n",
		humanize.Comma(int64(snap.Society.Population)),
		humanize.Comma(int64(snap.Society.TotalPoints)),
		session.TurnNumber-1)
}

// playRound ends every seat's turn once, which carries the session
// across one round boundary.
func playRound(s *engine.Session) error {
	seats := len(s.TurnOrder)
	for i := 0; i < seats && s.Stage == game.StageRunning; i++ {
		if err := s.EndTurn(s.CurrentIndex); err != nil {
			return err
		}
	}
	return nil
}

func printRoles(s *engine.Session) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Seat", "Player", "Role"}),
	)
	for _, p := range s.Players {
		role := "—"
		if p.Role != nil {
			role = p.Role.String()
		}
		table.Append([]string{
			fmt.Sprintf("%d", p.Index),
			p.Name,
			role,
		})
	}
	table.Render()
}

func printSocietyReport(round int, s *engine.Session) {
	snap := s.Snapshot()
	soc := snap.Society
	fmt.Printf("round %2d  pop=%s food=%s (fresh %d / spoiling %d)  materials=%d  points=%s\n",
		round,
		humanize.Comma(int64(soc.Population)),
		humanize.Comma(int64(soc.Food)),
		soc.FoodBreakdown.Fresh,
		soc.FoodBreakdown.Spoiling,
		soc.RawMaterials,
		humanize.Comma(int64(soc.TotalPoints)),
	)
}

func printStandings(s *engine.Session) {
	players := append([]game.Player(nil), s.Players...)
	sort.Slice(players, func(i, j int) bool {
		return players[i].PersonalScore > players[j].PersonalScore
	})

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Rank", "Player", "Role", "Gold", "Score"}),
	)
	for rank, p := range players {
		role := "—"
		if p.Role != nil {
			role = p.Role.String()
		}
		table.Append([]string{
			fmt.Sprintf("%d", rank+1),
			p.Name,
			role,
			humanize.Comma(int64(p.Gold)),
			fmt.Sprintf("%.1f", p.PersonalScore),
		})
	}
	table.Render()
}
