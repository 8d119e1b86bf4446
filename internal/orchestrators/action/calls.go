package action

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/rpg-party/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-party/internal/clients/voice"
	"github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/repositories/clips"
)

// draft is a record that has not been appended yet
type draft struct {
	record entities.TurnRecord
}

// draft produces one speaker's record: a narrative call, an optional check
// for the DM narrated onto its line, then an optional voice call. Failures are folded into the
// record and never returned.
func (r *resolver) draft(ctx context.Context, session *entities.Session, prompt entities.TurnRecord, history []entities.TurnRecord, speaker entities.PartyMember) draft {
	rec := entities.TurnRecord{
		SpeakerID:   speaker.ID,
		SpeakerName: speaker.DisplayName,
	}

	req := &narrative.Request{
		Role:      narrative.RoleCompanion,
		SessionID: session.ID,
		Speaker:   speaker,
		Scene:     session.Scene,
		Prompt:    prompt,
		History:   history,
	}
	if speaker.ID == entities.DMSpeakerID {
		req.Role = narrative.RoleDM
		req.Speaker = entities.PartyMember{}
	}

	resp, err := r.generate(ctx, req, speaker)
	if err != nil {
		rec.Failure = &entities.Failure{
			Kind:    entities.FailureNarrative,
			Message: err.Error(),
		}
		rec.CreatedAt = r.clock.Now()
		return draft{record: rec}
	}

	rec.ActionLabel = resp.ActionLabel
	rec.Dialogue = resp.Dialogue

	if resp.RollNotation != "" && req.Role == narrative.RoleDM {
		roll, err := r.engine.Roll(resp.RollNotation, dice.RollOptions{
			Advantage:    resp.Advantage,
			Disadvantage: resp.Disadvantage,
		})
		if err != nil {
			slog.WarnContext(ctx, "Ignoring unusable check from narrator",
				"session_id", session.ID,
				"notation", resp.RollNotation,
				"error", err,
			)
		} else {
			rec.Dice = roll
			rec.Dialogue += " " + narrative.DescribeRoll(roll)
		}
	}

	if session.VoiceEnabled && r.voice != nil && rec.Dialogue != "" {
		ref, err := r.speak(ctx, session.ID, speaker, rec.Dialogue)
		if err != nil {
			rec.Failure = &entities.Failure{
				Kind:    entities.FailureVoice,
				Message: err.Error(),
			}
		} else {
			rec.AudioRef = ref
		}
	}

	rec.CreatedAt = r.clock.Now()
	return draft{record: rec}
}

// commit appends a draft and hands its clip to the sink
func (r *resolver) commit(ctx context.Context, session *entities.Session, sink AudioSink, d draft) entities.TurnRecord {
	rec := session.Append(d.record)

	if rec.HasAudio() && sink != nil {
		err := sink.Enqueue(ctx, entities.AudioQueueItem{
			SessionID: session.ID,
			SpeakerID: rec.SpeakerID,
			ClipRef:   rec.AudioRef,
			Sequence:  rec.Sequence,
		})
		if err != nil {
			slog.WarnContext(ctx, "Failed to queue clip",
				"session_id", session.ID,
				"sequence", rec.Sequence,
				"speaker_id", rec.SpeakerID,
				"error", err,
			)
		}
	}

	return rec
}

func (r *resolver) generate(ctx context.Context, req *narrative.Request, speaker entities.PartyMember) (*narrative.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "narrative.Generate", trace.WithAttributes(
		attribute.String("speaker.id", speaker.ID),
		attribute.String("role", string(req.Role)),
	))
	defer span.End()

	resp, err := r.narrator.Generate(ctx, req)
	if err == nil && (resp == nil || resp.Dialogue == "") {
		err = errors.Unavailable("empty response")
	}
	if err != nil {
		failure := errors.CollaboratorFailure(err, "narrative").WithMeta("speaker_id", speaker.ID)
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Message)

		slog.WarnContext(ctx, "Narrative call failed",
			"session_id", req.SessionID,
			"speaker_id", speaker.ID,
			"timed_out", failure.Meta["timed_out"],
			"error", err,
		)
		return nil, failure
	}

	return resp, nil
}

// speak synthesizes and stores one line under a single timeout
func (r *resolver) speak(ctx context.Context, sessionID string, speaker entities.PartyMember, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "voice.Synthesize", trace.WithAttributes(
		attribute.String("speaker.id", speaker.ID),
		attribute.String("voice.profile", speaker.VoiceProfile),
	))
	defer span.End()

	fail := func(err error) (string, error) {
		failure := errors.CollaboratorFailure(err, "voice").WithMeta("speaker_id", speaker.ID)
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Message)

		slog.WarnContext(ctx, "Voice call failed",
			"session_id", sessionID,
			"speaker_id", speaker.ID,
			"error", err,
		)
		return "", failure
	}

	out, err := r.voice.Synthesize(ctx, &voice.SynthesizeInput{
		SessionID:    sessionID,
		SpeakerID:    speaker.ID,
		VoiceProfile: speaker.VoiceProfile,
		Text:         text,
	})
	if err != nil {
		return fail(err)
	}

	saved, err := r.clips.Save(ctx, &clips.SaveInput{
		SessionID:   sessionID,
		SpeakerID:   speaker.ID,
		ContentType: out.ContentType,
		Audio:       out.Audio,
	})
	if err != nil {
		return fail(err)
	}

	return saved.ClipRef, nil
}
