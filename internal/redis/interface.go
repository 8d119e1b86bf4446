package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the go-redis universal client. Single node, sentinel and
// cluster clients all satisfy it.
type Client interface {
	redis.UniversalClient
}

// Nil is returned by reads of a missing key
const Nil = redis.Nil

// Pipeliner batches commands for Pipelined and TxPipelined
type Pipeliner = redis.Pipeliner

// Z is a sorted set member
type Z = redis.Z

// IntCmd is the result of an integer command
type IntCmd = redis.IntCmd

// StringSliceCmd is the result of a list read
type StringSliceCmd = redis.StringSliceCmd

// MapStringStringCmd is the result of a hash read
type MapStringStringCmd = redis.MapStringStringCmd
