// Package client provides test commands for the RPG Party gRPC services
package client

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	partyv1alpha1 "github.com/KirkDiggler/rpg-party/internal/api/party/v1alpha1"
	"github.com/KirkDiggler/rpg-party/internal/entities"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
)

// ClientCmd is the root command for all client test commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Test client commands for RPG Party",
	Long:  `Client commands allow you to play a table against a running server by making real gRPC requests.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	// Companion and DM calls can take a while
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Request timeout")

	// Session commands
	ClientCmd.AddCommand(createSessionCmd)
	ClientCmd.AddCommand(getSessionCmd)
	ClientCmd.AddCommand(listSessionsCmd)
	ClientCmd.AddCommand(actCmd)
	ClientCmd.AddCommand(companionTurnCmd)
	ClientCmd.AddCommand(playbackCmd)
	ClientCmd.AddCommand(voiceModeCmd)
	ClientCmd.AddCommand(endSessionCmd)

	// Dice commands
	ClientCmd.AddCommand(tableRollCmd)
	ClientCmd.AddCommand(rollDiceCmd)
	ClientCmd.AddCommand(getRollSessionCmd)
	ClientCmd.AddCommand(rollAbilityScoresCmd)
}

// createConnection creates a gRPC connection to the server
func createConnection() (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return conn, nil
}

// createSessionClient creates a session service client
func createSessionClient() (partyv1alpha1.SessionServiceClient, func(), error) {
	conn, err := createConnection()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return partyv1alpha1.NewSessionServiceClient(conn), cleanup, nil
}

// createDiceClient creates a dice service client
func createDiceClient() (partyv1alpha1.DiceServiceClient, func(), error) {
	conn, err := createConnection()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return partyv1alpha1.NewDiceServiceClient(conn), cleanup, nil
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	return tw
}

func printRecords(records []entities.TurnRecord) {
	tw := newTable()
	tw.AppendHeader(table.Row{"#", "Speaker", "Action", "Dialogue", "Dice", "Audio", "Failure"})
	for _, rec := range records {
		dice := ""
		if rec.Dice != nil {
			dice = formatResult(rec.Dice)
		}
		failure := ""
		if rec.Failure != nil {
			failure = fmt.Sprintf("%s: %s", rec.Failure.Kind, rec.Failure.Message)
		}
		tw.AppendRow(table.Row{rec.Sequence, rec.SpeakerName, rec.ActionLabel, rec.Dialogue, dice, rec.AudioRef, failure})
	}
	tw.Render()
}

func printMembers(members []entities.PartyMember, current int) {
	tw := newTable()
	tw.AppendHeader(table.Row{"", "ID", "Name", "Kind", "Class", "Voice"})
	for i, m := range members {
		marker := ""
		if i == current {
			marker = "▶"
		}
		tw.AppendRow(table.Row{marker, m.ID, m.DisplayName, m.Kind, m.Class, m.VoiceProfile})
	}
	tw.Render()
}

func printRolls(rolls []*partyv1alpha1.DiceRoll) {
	tw := newTable()
	tw.AppendHeader(table.Row{"Roll ID", "Notation", "Dice", "Dropped", "Total", "Description"})
	for _, roll := range rolls {
		if roll.Result == nil {
			continue
		}
		tw.AppendRow(table.Row{roll.RollID, roll.Result.Notation, roll.Result.RawRolls, roll.Dropped, roll.Result.Total, roll.Description})
	}
	tw.Render()
}

func formatResult(r *entities.DiceRollResult) string {
	out := fmt.Sprintf("%s %v = %d", r.Notation, r.RawRolls, r.Total)
	if r.Mode != "" && r.Mode != entities.RollModeNormal {
		out += fmt.Sprintf(" (%s)", r.Mode)
	}
	switch {
	case r.IsCriticalMax:
		out += " CRIT!"
	case r.IsCriticalMin:
		out += " fumble"
	}
	return out
}
