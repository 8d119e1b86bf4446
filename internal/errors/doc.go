// Package errors provides structured, coded errors for rpg-party.
//
// Every error carries a Code, a user-facing message, an optional cause and
// metadata. Codes map onto gRPC and HTTP status codes, and the session domain
// adds its own:
//   - InvalidNotation: dice notation did not parse (rejected before any roll)
//   - NotYourTurn: a submission arrived from a member whose turn it is not
//   - NoActiveSession: the session does not exist or has ended
//   - CollaboratorFailure: a narrative or voice call failed or timed out
//   - PlaybackFailed: a queued clip could not be played
//
// The first three are returned to the caller. CollaboratorFailure and
// PlaybackFailed are recorded or published and never stop a session.
//
// # Basic Usage
//
//	err := errors.NotYourTurnf("it is %s's turn", current.DisplayName)
//	err := errors.InvalidNotationf("unsupported notation %q", notation)
//
// Adding metadata:
//
//	err := errors.NoActiveSession("session not found").
//	    WithMeta("session_id", sessionID)
//
// Wrapping errors keeps the code of the wrapped error:
//
//	if err := repo.Save(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to save session snapshot")
//	}
//
// # Validation
//
//	vb := errors.NewValidationBuilder()
//	if c.Generator == nil {
//	    vb.RequiredField("Generator")
//	}
//	errors.ValidatePositiveDuration("CallTimeout", c.CallTimeout, vb)
//	return vb.Build()
//
// # gRPC
//
// Handlers return errors.ToGRPCError(err). The domain code travels as a
// structpb detail, so errors.FromGRPCError on the client side restores
// NotYourTurn rather than the coarser FailedPrecondition.
package errors
