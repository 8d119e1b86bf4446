// Package dice implements the dice orchestrator: rolls made through the
// dice engine and logged per session
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/KirkDiggler/rpg-party/internal/orchestrators/dice Service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	diceengine "github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-party/internal/pkg/idgen"
	dicesession "github.com/KirkDiggler/rpg-party/internal/repositories/dice_session"
)

const (
	// ContextTable groups rolls made at the table, in or out of a turn
	ContextTable = "table"

	// ContextAbilityScores groups ability score rolls
	ContextAbilityScores = "ability_scores"

	// DefaultSessionTTL is how long a roll log lives without new rolls
	DefaultSessionTTL = 15 * time.Minute

	// Ability score rolling methods
	MethodStandard = "4d6_drop_lowest"
	MethodClassic  = "3d6"
)

// Service defines the interface for dice operations
type Service interface {
	// Generic dice rolling
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)
	GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error)
	ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error)

	// Six ability scores in one call
	RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	Engine          diceengine.Engine
	DiceSessionRepo dicesession.Repository
	IDGenerator     idgen.Generator
	Clock           clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.DiceSessionRepo == nil {
		vb.RequiredField("DiceSessionRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	engine          diceengine.Engine
	diceSessionRepo dicesession.Repository
	idGen           idgen.Generator
	clock           clock.Clock
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &orchestrator{
		engine:          cfg.Engine,
		diceSessionRepo: cfg.DiceSessionRepo,
		idGen:           cfg.IDGenerator,
		clock:           clk,
	}, nil
}

// RollDice rolls dice using the specified notation and appends the result
// to the roll log for the entity and context
func (o *orchestrator) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Notation == "" {
		return nil, errors.InvalidNotation("dice notation is required")
	}
	rollContext := input.Context
	if rollContext == "" {
		rollContext = ContextTable
	}

	result, err := o.engine.Roll(input.Notation, diceengine.RollOptions{
		Advantage:    input.Advantage,
		Disadvantage: input.Disadvantage,
	})
	if err != nil {
		return nil, err
	}

	roll := &dicesession.DiceRoll{
		RollID:      o.idGen.Generate(),
		RolledBy:    input.RolledBy,
		Description: input.Description,
		Result:      *result,
		RolledAt:    o.clock.Now(),
	}

	session, err := o.appendRolls(ctx, input.EntityID, rollContext, input.TTL, *roll)
	if err != nil {
		return nil, err
	}

	slog.Info("Dice rolled successfully",
		"entity_id", input.EntityID,
		"context", rollContext,
		"notation", input.Notation,
		"mode", result.Mode,
		"total", result.Total,
		"roll_id", roll.RollID,
	)

	return &RollDiceOutput{
		Roll:    roll,
		Session: session,
	}, nil
}

// appendRolls adds rolls to an existing log or starts a new one
func (o *orchestrator) appendRolls(ctx context.Context, entityID, rollContext string, ttl time.Duration, rolls ...dicesession.DiceRoll) (*dicesession.DiceSession, error) {
	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: entityID,
		Context:  rollContext,
	})
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, errors.Wrap(err, "failed to check for existing session")
		}

		if ttl == 0 {
			ttl = DefaultSessionTTL
		}

		createOutput, err := o.diceSessionRepo.Create(ctx, dicesession.CreateInput{
			EntityID: entityID,
			Context:  rollContext,
			Rolls:    rolls,
			TTL:      ttl,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create dice session")
		}
		return createOutput.Session, nil
	}

	session := getOutput.Session
	session.Rolls = append(session.Rolls, rolls...)
	if err := o.diceSessionRepo.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to update dice session")
	}
	return session, nil
}

// GetRollSession retrieves an existing dice roll session
func (o *orchestrator) GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	rollContext := input.Context
	if rollContext == "" {
		rollContext = ContextTable
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.EntityID,
		Context:  rollContext,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dice session")
	}

	return &GetRollSessionOutput{
		Session: getOutput.Session,
	}, nil
}

// ClearRollSession removes a dice roll session
func (o *orchestrator) ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	rollContext := input.Context
	if rollContext == "" {
		rollContext = ContextTable
	}

	deleteOutput, err := o.diceSessionRepo.Delete(ctx, dicesession.DeleteInput{
		EntityID: input.EntityID,
		Context:  rollContext,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete dice session")
	}

	slog.Info("Dice session cleared",
		"entity_id", input.EntityID,
		"context", rollContext,
		"rolls_deleted", deleteOutput.RollsDeleted,
	)

	return &ClearRollSessionOutput{
		RollsDeleted: deleteOutput.RollsDeleted,
	}, nil
}

// RollAbilityScores rolls six ability scores and replaces any earlier set
func (o *orchestrator) RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	method := input.Method
	if method == "" {
		method = MethodStandard
	}

	now := o.clock.Now()
	var rolls []*dicesession.DiceRoll

	switch method {
	case MethodStandard:
		scores, err := o.engine.AbilityScores()
		if err != nil {
			return nil, errors.Wrap(err, "failed to roll ability scores")
		}
		for i, score := range scores {
			rolls = append(rolls, &dicesession.DiceRoll{
				RollID:      o.idGen.Generate(),
				Description: fmt.Sprintf("Ability Score %d (%s)", i+1, method),
				Result: entities.DiceRollResult{
					Notation:   "4d6",
					Count:      4,
					Faces:      6,
					RawRolls:   score.Rolls,
					ChosenRoll: score.Total,
					Total:      score.Total,
					Mode:       entities.RollModeNormal,
				},
				Dropped:  []int{score.Dropped},
				RolledAt: now,
			})
		}
	case MethodClassic:
		for i := 0; i < 6; i++ {
			result, err := o.engine.Roll("3d6", diceengine.RollOptions{})
			if err != nil {
				return nil, errors.Wrapf(err, "failed to roll ability score %d", i+1)
			}
			rolls = append(rolls, &dicesession.DiceRoll{
				RollID:      o.idGen.Generate(),
				Description: fmt.Sprintf("Ability Score %d (%s)", i+1, method),
				Result:      *result,
				RolledAt:    now,
			})
		}
	default:
		return nil, errors.InvalidArgumentf("unsupported rolling method: %s", method)
	}

	rollValues := make([]dicesession.DiceRoll, len(rolls))
	for i, roll := range rolls {
		rollValues[i] = *roll
	}

	// A new set replaces the previous one
	createOutput, err := o.diceSessionRepo.Create(ctx, dicesession.CreateInput{
		EntityID: input.EntityID,
		Context:  ContextAbilityScores,
		Rolls:    rollValues,
		TTL:      DefaultSessionTTL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ability score session")
	}

	slog.Info("Ability scores rolled successfully",
		"entity_id", input.EntityID,
		"method", method,
		"rolls_count", len(rolls),
	)

	return &RollAbilityScoresOutput{
		Rolls:   rolls,
		Session: createOutput.Session,
	}, nil
}
