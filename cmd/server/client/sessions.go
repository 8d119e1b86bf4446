package client

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	partyv1alpha1 "github.com/KirkDiggler/rpg-party/internal/api/party/v1alpha1"
)

var (
	sceneFlag  string
	voiceFlag  bool
	stateFlag  string
	limitFlag  int32
	actionFlag string
	rollFlag   string
	advFlag    bool
	disadvFlag bool
	volumeFlag float64
	muteFlag   bool
	unmuteFlag bool
	pauseFlag  bool
	resumeFlag bool
	clearFlag  bool
)

var createSessionCmd = &cobra.Command{
	Use:   "create-session [your-name]",
	Short: "Open a new table",
	Long: `Open a table for you and the default party. Examples:

  create-session Robin
  create-session Robin --scene "The Dragon's Lair" --voice`,
	Args: cobra.ExactArgs(1),
	RunE: createSession,
}

var getSessionCmd = &cobra.Command{
	Use:   "get-session [session-id]",
	Short: "Show a table's party and history",
	Args:  cobra.ExactArgs(1),
	RunE:  getSession,
}

var listSessionsCmd = &cobra.Command{
	Use:   "list-sessions",
	Short: "List tables, newest first",
	Args:  cobra.NoArgs,
	RunE:  listSessions,
}

var actCmd = &cobra.Command{
	Use:   "act [session-id] [dialogue]",
	Short: "Take your turn",
	Long: `Say or do something on your turn. Examples:

  act sess-123 "I search the altar for traps" --action search_area
  act sess-123 "Have at you!" --action melee_attack --roll 1d20+5 --advantage`,
	Args: cobra.ExactArgs(2),
	RunE: act,
}

var companionTurnCmd = &cobra.Command{
	Use:   "companion-turn [session-id] [member-id]",
	Short: "Play the turn of the companion holding it",
	Args:  cobra.ExactArgs(2),
	RunE:  companionTurn,
}

var playbackCmd = &cobra.Command{
	Use:   "playback [session-id]",
	Short: "Change volume, mute or pause, or clear the audio queue",
	Args:  cobra.ExactArgs(1),
	RunE:  playback,
}

var voiceModeCmd = &cobra.Command{
	Use:       "voice [session-id] on|off",
	Short:     "Turn voiced dialogue on or off",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"on", "off"},
	RunE:      voiceMode,
}

var endSessionCmd = &cobra.Command{
	Use:   "end-session [session-id]",
	Short: "Close a table",
	Args:  cobra.ExactArgs(1),
	RunE:  endSession,
}

func init() {
	createSessionCmd.Flags().StringVar(&sceneFlag, "scene", "", "scene title or a custom scene description")
	createSessionCmd.Flags().BoolVar(&voiceFlag, "voice", false, "voice the DM and companions")

	listSessionsCmd.Flags().StringVar(&stateFlag, "state", "", "filter by state: active or ended")
	listSessionsCmd.Flags().Int32Var(&limitFlag, "limit", 20, "maximum sessions to list")

	actCmd.Flags().StringVar(&actionFlag, "action", "", "action label, e.g. melee_attack")
	actCmd.Flags().StringVar(&rollFlag, "roll", "", "dice to roll with the action, e.g. 1d20+3")
	actCmd.Flags().BoolVar(&advFlag, "advantage", false, "roll with advantage")
	actCmd.Flags().BoolVar(&disadvFlag, "disadvantage", false, "roll with disadvantage")

	playbackCmd.Flags().Float64Var(&volumeFlag, "volume", -1, "volume between 0 and 1")
	playbackCmd.Flags().BoolVar(&muteFlag, "mute", false, "mute playback")
	playbackCmd.Flags().BoolVar(&unmuteFlag, "unmute", false, "unmute playback")
	playbackCmd.Flags().BoolVar(&pauseFlag, "pause", false, "pause after the current clip")
	playbackCmd.Flags().BoolVar(&resumeFlag, "resume", false, "resume playback")
	playbackCmd.Flags().BoolVar(&clearFlag, "clear", false, "stop and drop every queued clip")
}

func createSession(_ *cobra.Command, args []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.CreateSession(ctx, &partyv1alpha1.CreateSessionRequest{
		HumanName:    args[0],
		Scene:        sceneFlag,
		VoiceEnabled: voiceFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	s := resp.Session
	fmt.Printf("\n🏰 %s\n", s.SceneTitle)
	fmt.Printf("Session: %s\n\n", s.ID)
	printMembers(s.Members, s.CurrentTurnIndex)
	printRecords(s.History)
	fmt.Printf("\n💡 Use 'act %s \"what you do\"' to take your turn.\n", s.ID)

	return nil
}

func getSession(_ *cobra.Command, args []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.GetSession(ctx, &partyv1alpha1.GetSessionRequest{SessionID: args[0]})
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	s := resp.Session
	fmt.Printf("\n🏰 %s (%s, round %d, voice %t)\n\n", s.SceneTitle, s.State, s.Round, s.VoiceEnabled)
	printMembers(s.Members, s.CurrentTurnIndex)
	printRecords(s.History)

	if p := resp.Playback; p != nil {
		active := "-"
		if p.Active != nil {
			active = fmt.Sprintf("#%d %s", p.Active.Sequence, p.Active.SpeakerID)
		}
		fmt.Printf("\n🔊 Playing: %s, %d pending, volume %.2f, muted %t, paused %t\n",
			active, len(p.Pending), p.Settings.Volume, p.Settings.Muted, p.Paused)
	}

	return nil
}

func listSessions(_ *cobra.Command, _ []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.ListSessions(ctx, &partyv1alpha1.ListSessionsRequest{
		State: stateFlag,
		Limit: limitFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Scene", "State", "Round", "Records", "Created"})
	for _, s := range resp.Sessions {
		tw.AppendRow(table.Row{s.ID, s.SceneTitle, s.State, s.Round, len(s.History), s.CreatedAt.Format(time.DateTime)})
	}
	tw.Render()

	return nil
}

func act(_ *cobra.Command, args []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req := &partyv1alpha1.SubmitActionRequest{
		SessionID:   args[0],
		Dialogue:    args[1],
		ActionLabel: actionFlag,
	}
	if rollFlag != "" {
		req.Roll = &partyv1alpha1.RollRequest{
			Notation:     rollFlag,
			Advantage:    advFlag,
			Disadvantage: disadvFlag,
		}
	}

	resp, err := client.SubmitAction(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to submit action: %w", err)
	}

	printTurn(resp)
	return nil
}

func companionTurn(_ *cobra.Command, args []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.TakeCompanionTurn(ctx, &partyv1alpha1.TakeCompanionTurnRequest{
		SessionID: args[0],
		MemberID:  args[1],
	})
	if err != nil {
		return fmt.Errorf("failed to take companion turn: %w", err)
	}

	printTurn(resp)
	return nil
}

func printTurn(resp *partyv1alpha1.TurnResponse) {
	fmt.Println()
	printRecords(resp.Records)
	fmt.Printf("\n➡️  Round %d, next up: %s (%s)\n", resp.Round, resp.Next.DisplayName, resp.Next.ID)
}

func playback(cmd *cobra.Command, args []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req := &partyv1alpha1.SetPlaybackRequest{
		SessionID: args[0],
		Clear:     clearFlag,
	}
	if cmd.Flags().Changed("volume") {
		req.Volume = &volumeFlag
	}
	if muteFlag || unmuteFlag {
		muted := muteFlag
		req.Muted = &muted
	}
	if pauseFlag || resumeFlag {
		paused := pauseFlag
		req.Paused = &paused
	}

	resp, err := client.SetPlayback(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to set playback: %w", err)
	}

	p := resp.Playback
	fmt.Printf("🔊 volume %.2f, muted %t, paused %t, %d pending\n",
		p.Settings.Volume, p.Settings.Muted, p.Paused, len(p.Pending))
	return nil
}

func voiceMode(_ *cobra.Command, args []string) error {
	var enabled bool
	switch args[1] {
	case "on":
		enabled = true
	case "off":
	default:
		return fmt.Errorf("expected on or off, got %q", args[1])
	}

	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.SetVoiceMode(ctx, &partyv1alpha1.SetVoiceModeRequest{
		SessionID: args[0],
		Enabled:   enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to set voice mode: %w", err)
	}

	fmt.Printf("Voice mode for %s: %t\n", resp.Session.ID, resp.Session.VoiceEnabled)
	return nil
}

func endSession(_ *cobra.Command, args []string) error {
	client, cleanup, err := createSessionClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.EndSession(ctx, &partyv1alpha1.EndSessionRequest{SessionID: args[0]})
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	if resp.AlreadyEnded {
		fmt.Printf("Session %s was already ended\n", args[0])
		return nil
	}
	fmt.Printf("Session %s ended. Farewell, adventurer!\n", args[0])
	return nil
}
