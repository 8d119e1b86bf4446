// Package v1alpha1 handles the party.v1alpha1 grpc service interfaces
package v1alpha1

import (
	"context"

	partyv1alpha1 "github.com/KirkDiggler/rpg-party/internal/api/party/v1alpha1"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/orchestrators/dice"
	dicesession "github.com/KirkDiggler/rpg-party/internal/repositories/dice_session"
)

// DiceHandlerConfig holds dependencies for the dice handler
type DiceHandlerConfig struct {
	DiceService dice.Service
}

// Validate ensures all required dependencies are present
func (c *DiceHandlerConfig) Validate() error {
	if c.DiceService == nil {
		return errors.InvalidArgument("dice service is required")
	}
	return nil
}

// DiceHandler implements the party dice gRPC service
type DiceHandler struct {
	partyv1alpha1.UnimplementedDiceServiceServer
	diceService dice.Service
}

// NewDiceHandler creates a new dice handler with the given configuration
func NewDiceHandler(cfg *DiceHandlerConfig) (*DiceHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &DiceHandler{
		diceService: cfg.DiceService,
	}, nil
}

// RollDice rolls dice using the specified notation and logs the result
func (h *DiceHandler) RollDice(
	ctx context.Context,
	req *partyv1alpha1.LogRollRequest,
) (*partyv1alpha1.LogRollResponse, error) {
	if req.EntityID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("entity_id is required"))
	}
	if req.Notation == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("notation is required"))
	}

	diceOutput, err := h.diceService.RollDice(ctx, &dice.RollDiceInput{
		EntityID:     req.EntityID,
		Context:      req.Context,
		Notation:     req.Notation,
		Advantage:    req.Advantage,
		Disadvantage: req.Disadvantage,
		Description:  req.Description,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.LogRollResponse{
		Rolls:     convertRolls(diceOutput.Session.Rolls),
		ExpiresAt: diceOutput.Session.ExpiresAt.Unix(),
	}, nil
}

// GetRollSession retrieves an existing roll log
func (h *DiceHandler) GetRollSession(
	ctx context.Context,
	req *partyv1alpha1.GetRollSessionRequest,
) (*partyv1alpha1.GetRollSessionResponse, error) {
	if req.EntityID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("entity_id is required"))
	}

	diceOutput, err := h.diceService.GetRollSession(ctx, &dice.GetRollSessionInput{
		EntityID: req.EntityID,
		Context:  req.Context,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.GetRollSessionResponse{
		Rolls:     convertRolls(diceOutput.Session.Rolls),
		ExpiresAt: diceOutput.Session.ExpiresAt.Unix(),
		CreatedAt: diceOutput.Session.CreatedAt.Unix(),
	}, nil
}

// ClearRollSession removes a roll log
func (h *DiceHandler) ClearRollSession(
	ctx context.Context,
	req *partyv1alpha1.ClearRollSessionRequest,
) (*partyv1alpha1.ClearRollSessionResponse, error) {
	if req.EntityID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("entity_id is required"))
	}

	diceOutput, err := h.diceService.ClearRollSession(ctx, &dice.ClearRollSessionInput{
		EntityID: req.EntityID,
		Context:  req.Context,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &partyv1alpha1.ClearRollSessionResponse{
		Message:      "Roll session cleared successfully",
		RollsCleared: diceOutput.RollsDeleted,
	}, nil
}

// RollAbilityScores rolls a fresh set of six ability scores
func (h *DiceHandler) RollAbilityScores(
	ctx context.Context,
	req *partyv1alpha1.RollAbilityScoresRequest,
) (*partyv1alpha1.RollAbilityScoresResponse, error) {
	if req.EntityID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("entity_id is required"))
	}

	diceOutput, err := h.diceService.RollAbilityScores(ctx, &dice.RollAbilityScoresInput{
		EntityID: req.EntityID,
		Method:   req.Method,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	rolls := make([]*partyv1alpha1.DiceRoll, 0, len(diceOutput.Rolls))
	for _, roll := range diceOutput.Rolls {
		rolls = append(rolls, convertRoll(roll))
	}

	return &partyv1alpha1.RollAbilityScoresResponse{
		Rolls:     rolls,
		ExpiresAt: diceOutput.Session.ExpiresAt.Unix(),
	}, nil
}

func convertRolls(sessionRolls []dicesession.DiceRoll) []*partyv1alpha1.DiceRoll {
	rolls := make([]*partyv1alpha1.DiceRoll, 0, len(sessionRolls))
	for i := range sessionRolls {
		rolls = append(rolls, convertRoll(&sessionRolls[i]))
	}
	return rolls
}

func convertRoll(roll *dicesession.DiceRoll) *partyv1alpha1.DiceRoll {
	result := roll.Result
	var dropped []int32
	for _, d := range roll.Dropped {
		dropped = append(dropped, int32(d))
	}
	return &partyv1alpha1.DiceRoll{
		RollID:      roll.RollID,
		RolledBy:    roll.RolledBy,
		Description: roll.Description,
		Result:      &result,
		Dropped:     dropped,
		RolledAt:    roll.RolledAt.Unix(),
	}
}
