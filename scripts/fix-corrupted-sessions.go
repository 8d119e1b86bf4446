package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	indexKey         = "sessions:index"
)

// Just enough of a session snapshot to sanity check it
type sessionData struct {
	ID               string            `json:"id"`
	Members          []json.RawMessage `json:"members"`
	CurrentTurnIndex int               `json:"current_turn_index"`
	State            string            `json:"state"`
}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning for corrupted session snapshots...")

	iter := client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()

	var corruptedKeys []string
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()
		checkedCount++

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		if reason := checkSnapshot(key, data); reason != "" {
			fmt.Printf("✗ %s: %s\n", key, reason)
			corruptedKeys = append(corruptedKeys, key)
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	// Index entries whose snapshot expired are dropped without asking
	ids, err := client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		log.Fatal("Failed to read session index:", err)
	}
	var stale int
	for _, id := range ids {
		exists, err := client.Exists(ctx, sessionKeyPrefix+id).Result()
		if err != nil {
			fmt.Printf("Error checking %s: %v\n", id, err)
			continue
		}
		if exists == 0 {
			client.ZRem(ctx, indexKey, id)
			stale++
		}
	}
	if stale > 0 {
		fmt.Printf("Removed %d stale index entries\n", stale)
	}

	fmt.Printf("\nChecked %d keys, found %d corrupted entries\n", checkedCount, len(corruptedKeys))

	if len(corruptedKeys) == 0 {
		fmt.Println("No corrupted data found!")
		return
	}

	fmt.Println("\nCorrupted keys:")
	for _, key := range corruptedKeys {
		fmt.Printf("  - %s\n", key)
	}

	fmt.Print("\nDo you want to DELETE these corrupted entries? (yes/no): ")
	var response string
	_, _ = fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}

	for _, key := range corruptedKeys {
		id := strings.TrimPrefix(key, sessionKeyPrefix)
		if err := client.Del(ctx, key).Err(); err != nil {
			fmt.Printf("Failed to delete %s: %v\n", key, err)
			continue
		}
		client.ZRem(ctx, indexKey, id)
		fmt.Printf("Deleted %s\n", key)
	}
	fmt.Println("\nCleanup complete!")
}

// checkSnapshot returns why a snapshot cannot be loaded, or "" if it can
func checkSnapshot(key, data string) string {
	var s sessionData
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return "corrupted JSON"
	}

	switch {
	case s.ID != strings.TrimPrefix(key, sessionKeyPrefix):
		return fmt.Sprintf("id %q does not match key", s.ID)
	case len(s.Members) == 0:
		return "no party members"
	case s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.Members):
		return fmt.Sprintf("turn index %d out of range for %d members", s.CurrentTurnIndex, len(s.Members))
	case s.State != "active" && s.State != "ended":
		return fmt.Sprintf("unknown state %q", s.State)
	}
	return ""
}
