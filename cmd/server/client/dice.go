package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	partyv1alpha1 "github.com/KirkDiggler/rpg-party/internal/api/party/v1alpha1"
)

var (
	descriptionFlag string
	methodFlag      string
	clearRollsFlag  bool
)

var rollDiceCmd = &cobra.Command{
	Use:   "roll-dice [notation] [entity-id] [context]",
	Short: "Roll dice into an entity's roll log",
	Long: `Roll dice and keep them in a short lived roll log. Examples:

  roll-dice 4d6 char-123 ability_scores
  roll-dice 1d20+5 char-456 attack --advantage
  roll-dice 2d8 char-789 damage --description "Longsword"`,
	Args: cobra.ExactArgs(3),
	RunE: rollDice,
}

var tableRollCmd = &cobra.Command{
	Use:   "roll [session-id] [notation]",
	Short: "Roll dice at a table without taking a turn",
	Args:  cobra.ExactArgs(2),
	RunE:  tableRoll,
}

var getRollSessionCmd = &cobra.Command{
	Use:   "get-roll-session [entity-id] [context]",
	Short: "Show an entity's roll log",
	Long: `Retrieve all dice rolls for a specific entity and context. Examples:

  get-roll-session char-123 ability_scores
  get-roll-session char-456 attack --clear`,
	Args: cobra.ExactArgs(2),
	RunE: getRollSession,
}

var rollAbilityScoresCmd = &cobra.Command{
	Use:   "roll-ability-scores [entity-id]",
	Short: "Roll six ability scores",
	Long: `Roll six ability scores, 4d6 drop lowest unless another method is given.

  Example: roll-ability-scores char-abc123 --method 3d6`,
	Args: cobra.ExactArgs(1),
	RunE: rollAbilityScores,
}

func init() {
	rollDiceCmd.Flags().StringVar(&descriptionFlag, "description", "", "what the roll is for")
	rollDiceCmd.Flags().BoolVar(&advFlag, "advantage", false, "roll with advantage")
	rollDiceCmd.Flags().BoolVar(&disadvFlag, "disadvantage", false, "roll with disadvantage")

	tableRollCmd.Flags().StringVar(&descriptionFlag, "description", "", "what the roll is for")
	tableRollCmd.Flags().BoolVar(&advFlag, "advantage", false, "roll with advantage")
	tableRollCmd.Flags().BoolVar(&disadvFlag, "disadvantage", false, "roll with disadvantage")

	getRollSessionCmd.Flags().BoolVar(&clearRollsFlag, "clear", false, "clear the log after showing it")

	rollAbilityScoresCmd.Flags().StringVar(&methodFlag, "method", "", "4d6_drop_lowest (default) or 3d6")
}

func rollDice(_ *cobra.Command, args []string) error {
	notation := args[0]
	entityID := args[1]
	rollContext := args[2]

	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("Rolling %s for entity %s (context: %s)...\n", notation, entityID, rollContext)

	resp, err := client.RollDice(ctx, &partyv1alpha1.LogRollRequest{
		EntityID:     entityID,
		Context:      rollContext,
		Notation:     notation,
		Advantage:    advFlag,
		Disadvantage: disadvFlag,
		Description:  descriptionFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to roll dice: %w", err)
	}

	fmt.Printf("\n🎲 Dice Roll Results:\n")
	printRolls(resp.Rolls)
	fmt.Printf("\nSession expires at: %s\n", formatUnix(resp.ExpiresAt))
	fmt.Printf("Total rolls in session: %d\n", len(resp.Rolls))

	return nil
}

func tableRoll(_ *cobra.Command, args []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.RollDice(ctx, &partyv1alpha1.RollDiceRequest{
		SessionID:    args[0],
		Notation:     args[1],
		Advantage:    advFlag,
		Disadvantage: disadvFlag,
		Description:  descriptionFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to roll dice: %w", err)
	}

	fmt.Printf("🎲 %s\n", formatResult(resp.Result))
	if resp.RollID != "" {
		fmt.Printf("Roll ID: %s\n", resp.RollID)
	}

	return nil
}

func getRollSession(_ *cobra.Command, args []string) error {
	entityID := args[0]
	rollContext := args[1]

	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("Getting roll session for entity %s (context: %s)...\n", entityID, rollContext)

	resp, err := client.GetRollSession(ctx, &partyv1alpha1.GetRollSessionRequest{
		EntityID: entityID,
		Context:  rollContext,
	})
	if err != nil {
		return fmt.Errorf("failed to get roll session: %w", err)
	}

	fmt.Printf("\n📜 Roll Session:\n")
	fmt.Printf("Created: %s\n", formatUnix(resp.CreatedAt))
	fmt.Printf("Expires: %s\n", formatUnix(resp.ExpiresAt))
	fmt.Printf("Total Rolls: %d\n\n", len(resp.Rolls))
	printRolls(resp.Rolls)

	if !clearRollsFlag {
		return nil
	}

	cleared, err := client.ClearRollSession(ctx, &partyv1alpha1.ClearRollSessionRequest{
		EntityID: entityID,
		Context:  rollContext,
	})
	if err != nil {
		return fmt.Errorf("failed to clear roll session: %w", err)
	}
	fmt.Printf("\n🧹 %s (%d rolls)\n", cleared.Message, cleared.RollsCleared)

	return nil
}

func rollAbilityScores(_ *cobra.Command, args []string) error {
	entityID := args[0]

	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("Rolling ability scores for %s...\n", entityID)

	resp, err := client.RollAbilityScores(ctx, &partyv1alpha1.RollAbilityScoresRequest{
		EntityID: entityID,
		Method:   methodFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to roll ability scores: %w", err)
	}

	fmt.Printf("\n🎲 Ability Score Rolls:\n")
	printRolls(resp.Rolls)
	fmt.Printf("\nSession expires at: %s\n", formatUnix(resp.ExpiresAt))
	fmt.Printf("💡 Use 'get-roll-session %s ability_scores' to see them again.\n", entityID)

	return nil
}

func formatUnix(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).Format(time.DateTime)
}
