package dicesession_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/pkg/clock"
	dicesession "github.com/KirkDiggler/rpg-party/internal/repositories/dice_session"
	"github.com/KirkDiggler/rpg-party/internal/testutils"
)

func TestRedisRollLogKeysShareTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := testutils.CreateTestRedisClient(t)
	clk := clock.NewManual(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC))

	repo, err := dicesession.NewRedisRepository(&dicesession.Config{Client: client, Clock: clk})
	require.NoError(t, err)

	created, err := repo.Create(ctx, dicesession.CreateInput{
		EntityID: "sess_1",
		Context:  "table",
		Rolls: []dicesession.DiceRoll{{
			RollID: "roll_1",
			Result: entities.DiceRollResult{Notation: "1d20", Total: 11},
		}},
		TTL: time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Minute, mr.TTL("rolls:sess_1:table"))
	assert.Equal(t, time.Minute, mr.TTL("rolls:sess_1:table:log"))

	// An update half way keeps the original deadline
	clk.Advance(30 * time.Second)
	created.Session.Rolls = append(created.Session.Rolls, dicesession.DiceRoll{RollID: "roll_2"})
	require.NoError(t, repo.Update(ctx, created.Session))
	assert.Equal(t, 30*time.Second, mr.TTL("rolls:sess_1:table:log"))

	mr.FastForward(31 * time.Second)
	assert.False(t, mr.Exists("rolls:sess_1:table"))
	assert.False(t, mr.Exists("rolls:sess_1:table:log"))
}

func TestRedisDeleteMissingLog(t *testing.T) {
	client, _ := testutils.CreateTestRedisClient(t)
	repo, err := dicesession.NewRedisRepository(&dicesession.Config{
		Client: client,
		Clock:  clock.NewManual(time.Now()),
	})
	require.NoError(t, err)

	out, err := repo.Delete(context.Background(), dicesession.DeleteInput{EntityID: "sess_1", Context: "table"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), out.RollsDeleted)
}
