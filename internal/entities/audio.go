package entities

// AudioQueueItem is a clip waiting for its turn on the player.
// Sequence matches the turn record that produced it.
type AudioQueueItem struct {
	SessionID string `json:"session_id"`
	SpeakerID string `json:"speaker_id"`
	ClipRef   string `json:"clip_ref"`
	Sequence  int64  `json:"sequence"`
}

// PlaybackSettings are applied to every clip at the moment it starts
type PlaybackSettings struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}
