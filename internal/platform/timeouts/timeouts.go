// Package timeouts defines shared timeout constants used across the bot.
// Centralizing these values prevents drift between components and makes
// the durations discoverable.
package timeouts

import "time"

// AnswerPhase caps how long a room waits for competing definitions before
// voting is forced open.
const AnswerPhase = 90 * time.Second

// VotePhase caps how long a room waits for poll answers before results are
// forced.
const VotePhase = 60 * time.Second

// ReadHeader limits how long the gateway HTTP server waits for request
// headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the gateway waits for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second

// CorpusFetch limits a single word-source HTTP request.
const CorpusFetch = 10 * time.Second
