package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/logger"
)

const (
	PromptOpening   = "Opening"
	PromptCandidate = "Candidate in an opening"
	PromptExit      = "Exit"
)

var lookupPrompt = promptui.Select{
	Label: "What do you want to resolve?",
	Items: []string{PromptOpening, PromptCandidate, PromptExit},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Interactively resolve openings and candidates from the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		lookup()
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

// lookup is a REPL over the same resolver the HTTP server uses. Handy for
// checking what a loosely phrased query will land on before wiring it into a
// consumer.
func lookup() {
	ctx := context.Background()

	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	svc, err := newServices(ctx, lg, config)
	if err != nil {
		lg.Fatal("wiring services", zap.Error(err))
	}

	for {
		_, action, err := lookupPrompt.Run()
		if err != nil {
			lg.Fatal("exiting", zap.Error(err))
		}

		switch action {
		case PromptOpening:
			err = lookupOpening(ctx, svc)
		case PromptCandidate:
			err = lookupCandidate(ctx, svc)
		case PromptExit:
			return
		}
		if err != nil {
			lg.Error("lookup failed", zap.Error(err))
		}
	}
}

func lookupOpening(ctx context.Context, svc *services) error {
	query, err := askQuery("Opening name or id")
	if err != nil {
		return err
	}

	result, err := svc.resolver.Opening(ctx, query)
	if err != nil {
		return err
	}

	if !result.Matched() {
		fmt.Printf("no opening matched %q (best score %.2f)\n", query, result.Score)
		return nil
	}

	fmt.Printf("%s -> %s (id %s, score %.2f)\n", query, result.MatchedName, result.ID, result.Score)
	return nil
}

func lookupCandidate(ctx context.Context, svc *services) error {
	openingQuery, err := askQuery("Opening name or id")
	if err != nil {
		return err
	}

	opening, err := svc.resolver.Opening(ctx, openingQuery)
	if err != nil {
		return err
	}
	if !opening.Matched() {
		fmt.Printf("no opening matched %q (best score %.2f)\n", openingQuery, opening.Score)
		return nil
	}

	name, err := askQuery("Candidate name")
	if err != nil {
		return err
	}

	candidate, err := svc.resolver.CandidateInOpening(ctx, opening.ID, name, nil)
	if err != nil {
		return err
	}
	if !candidate.Matched() {
		fmt.Printf("no candidate matched %q in %s (best score %.2f)\n", name, opening.MatchedName, candidate.Score)
		return nil
	}

	fmt.Printf("%s -> %s (id %s, score %.2f) in %s\n",
		name, candidate.MatchedName, candidate.ID, candidate.Score, opening.MatchedName)
	return nil
}

func askQuery(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}
	return prompt.Run()
}
