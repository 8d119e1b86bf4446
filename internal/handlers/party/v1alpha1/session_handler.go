package v1alpha1

import (
	"context"
	"log/slog"

	partyv1alpha1 "github.com/KirkDiggler/rpg-party/internal/api/party/v1alpha1"
	"github.com/KirkDiggler/rpg-party/internal/audio"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/action"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/session"
)

// SessionHandlerConfig holds dependencies for the session handler
type SessionHandlerConfig struct {
	SessionService session.Service
}

// Validate ensures all required dependencies are present
func (c *SessionHandlerConfig) Validate() error {
	if c.SessionService == nil {
		return errors.InvalidArgument("session service is required")
	}
	return nil
}

// SessionHandler implements the party session gRPC service
type SessionHandler struct {
	partyv1alpha1.UnimplementedSessionServiceServer
	sessionService session.Service
}

// NewSessionHandler creates a new session handler with the given configuration
func NewSessionHandler(cfg *SessionHandlerConfig) (*SessionHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &SessionHandler{
		sessionService: cfg.SessionService,
	}, nil
}

// CreateSession opens a new table
func (h *SessionHandler) CreateSession(
	ctx context.Context,
	req *partyv1alpha1.CreateSessionRequest,
) (*partyv1alpha1.CreateSessionResponse, error) {
	if req.HumanName == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("human_name is required"))
	}

	out, err := h.sessionService.CreateSession(ctx, &session.CreateSessionInput{
		HumanName:    req.HumanName,
		Companions:   req.Companions,
		Scene:        req.Scene,
		VoiceEnabled: req.VoiceEnabled,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.CreateSessionResponse{Session: out.Session}, nil
}

// GetSession returns a session and, while it is live, its playback state
func (h *SessionHandler) GetSession(
	ctx context.Context,
	req *partyv1alpha1.GetSessionRequest,
) (*partyv1alpha1.GetSessionResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	out, err := h.sessionService.GetSession(ctx, &session.GetSessionInput{SessionID: req.SessionID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.GetSessionResponse{
		Session:  out.Session,
		Playback: convertSnapshot(out.Playback),
	}, nil
}

// ListSessions lists stored sessions, newest first
func (h *SessionHandler) ListSessions(
	ctx context.Context,
	req *partyv1alpha1.ListSessionsRequest,
) (*partyv1alpha1.ListSessionsResponse, error) {
	state := entities.SessionState(req.State)
	switch state {
	case "", entities.SessionStateActive, entities.SessionStateEnded:
	default:
		return nil, errors.ToGRPCError(errors.InvalidArgumentf("unknown state %q", req.State))
	}
	if req.Limit < 0 {
		return nil, errors.ToGRPCError(errors.InvalidArgument("limit cannot be negative"))
	}

	out, err := h.sessionService.ListSessions(ctx, &session.ListSessionsInput{
		State: state,
		Limit: int(req.Limit),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.ListSessionsResponse{Sessions: out.Sessions}, nil
}

// SubmitAction resolves the human's action
func (h *SessionHandler) SubmitAction(
	ctx context.Context,
	req *partyv1alpha1.SubmitActionRequest,
) (*partyv1alpha1.TurnResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	input := &session.SubmitActionInput{
		SessionID:   req.SessionID,
		ActionLabel: req.ActionLabel,
		Dialogue:    req.Dialogue,
	}
	if req.Roll != nil {
		input.Roll = &action.RollRequest{
			Notation:     req.Roll.Notation,
			Advantage:    req.Roll.Advantage,
			Disadvantage: req.Roll.Disadvantage,
		}
	}

	out, err := h.sessionService.SubmitAction(ctx, input)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.TurnResponse{
		Records: out.Records,
		Next:    out.Next,
		Round:   int32(out.Round),
	}, nil
}

// TakeCompanionTurn plays the turn of the companion holding it
func (h *SessionHandler) TakeCompanionTurn(
	ctx context.Context,
	req *partyv1alpha1.TakeCompanionTurnRequest,
) (*partyv1alpha1.TurnResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}
	if req.MemberID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("member_id is required"))
	}

	out, err := h.sessionService.TakeCompanionTurn(ctx, &session.TakeCompanionTurnInput{
		SessionID: req.SessionID,
		MemberID:  req.MemberID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.TurnResponse{
		Records: out.Records,
		Next:    out.Next,
		Round:   int32(out.Round),
	}, nil
}

// RollDice rolls outside of any turn
func (h *SessionHandler) RollDice(
	ctx context.Context,
	req *partyv1alpha1.RollDiceRequest,
) (*partyv1alpha1.RollDiceResponse, error) {
	if req.Notation == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("notation is required"))
	}

	out, err := h.sessionService.RollDice(ctx, &session.RollDiceInput{
		SessionID:    req.SessionID,
		Notation:     req.Notation,
		Advantage:    req.Advantage,
		Disadvantage: req.Disadvantage,
		RolledBy:     req.RolledBy,
		Description:  req.Description,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.RollDiceResponse{
		Result: out.Result,
		RollID: out.RollID,
	}, nil
}

// EnqueueVoice queues an externally produced clip
func (h *SessionHandler) EnqueueVoice(
	ctx context.Context,
	req *partyv1alpha1.EnqueueVoiceRequest,
) (*partyv1alpha1.EnqueueVoiceResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}
	if req.SpeakerID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("speaker_id is required"))
	}
	if req.ClipRef == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("clip_ref is required"))
	}

	out, err := h.sessionService.EnqueueVoice(ctx, &session.EnqueueVoiceInput{
		SessionID: req.SessionID,
		SpeakerID: req.SpeakerID,
		ClipRef:   req.ClipRef,
		Sequence:  req.Sequence,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.EnqueueVoiceResponse{Item: out.Item}, nil
}

// ReportPlayback forwards the player's completion or failure report
func (h *SessionHandler) ReportPlayback(
	ctx context.Context,
	req *partyv1alpha1.ReportPlaybackRequest,
) (*partyv1alpha1.ReportPlaybackResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}
	if req.Sequence <= 0 {
		return nil, errors.ToGRPCError(errors.InvalidArgument("sequence must be positive"))
	}

	var err error
	switch req.Outcome {
	case partyv1alpha1.PlaybackCompleted:
		_, err = h.sessionService.PlaybackComplete(ctx, &session.PlaybackCompleteInput{
			SessionID: req.SessionID,
			Sequence:  req.Sequence,
		})
	case partyv1alpha1.PlaybackFailed:
		_, err = h.sessionService.PlaybackError(ctx, &session.PlaybackErrorInput{
			SessionID: req.SessionID,
			Sequence:  req.Sequence,
			Message:   req.Message,
		})
	default:
		return nil, errors.ToGRPCError(errors.InvalidArgumentf("unknown outcome %q", req.Outcome))
	}
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.ReportPlaybackResponse{}, nil
}

// SetPlayback changes volume, mute or pause, or clears the queue
func (h *SessionHandler) SetPlayback(
	ctx context.Context,
	req *partyv1alpha1.SetPlaybackRequest,
) (*partyv1alpha1.SetPlaybackResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	out, err := h.sessionService.SetPlayback(ctx, &session.SetPlaybackInput{
		SessionID: req.SessionID,
		Volume:    req.Volume,
		Muted:     req.Muted,
		Paused:    req.Paused,
		Clear:     req.Clear,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.SetPlaybackResponse{Playback: convertSnapshot(out.Playback)}, nil
}

// SetVoiceMode turns voice synthesis on or off for a session
func (h *SessionHandler) SetVoiceMode(
	ctx context.Context,
	req *partyv1alpha1.SetVoiceModeRequest,
) (*partyv1alpha1.SetVoiceModeResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	out, err := h.sessionService.SetVoiceMode(ctx, &session.SetVoiceModeInput{
		SessionID: req.SessionID,
		Enabled:   req.Enabled,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.SetVoiceModeResponse{Session: out.Session}, nil
}

// EndSession closes a table
func (h *SessionHandler) EndSession(
	ctx context.Context,
	req *partyv1alpha1.EndSessionRequest,
) (*partyv1alpha1.EndSessionResponse, error) {
	if req.SessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	out, err := h.sessionService.EndSession(ctx, &session.EndSessionInput{SessionID: req.SessionID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if out.AlreadyEnded {
		slog.Debug("End requested for ended session", "session_id", req.SessionID)
	}

	return &partyv1alpha1.EndSessionResponse{AlreadyEnded: out.AlreadyEnded}, nil
}

func convertSnapshot(snap *audio.Snapshot) *partyv1alpha1.PlaybackState {
	if snap == nil {
		return nil
	}
	return &partyv1alpha1.PlaybackState{
		Active:   snap.Active,
		Pending:  snap.Pending,
		Settings: snap.Settings,
		Paused:   snap.Paused,
	}
}
