package domain

import (
	"errors"
	"sort"
)

// PollOptionMaxLen is the maximum displayed length of one poll option, in
// runes. Longer definitions are truncated to satisfy transport limits.
const PollOptionMaxLen = 100

// ErrNoSubmissions indicates a poll cannot be built without any submitted
// definitions.
var ErrNoSubmissions = errors.New("no definitions were submitted")

// BuildPollOptions assembles the anonymized option list for a round: the
// official definition (nil author) plus every submitted definition, each
// truncated to PollOptionMaxLen runes, in an order produced by shuffle.
// The shuffle function receives the option count and a swap callback,
// matching rand.Shuffle.
func BuildPollOptions(official string, descriptions map[UserID]string, shuffle func(n int, swap func(i, j int))) ([]PollOption, error) {
	if len(descriptions) == 0 {
		return nil, ErrNoSubmissions
	}

	options := make([]PollOption, 0, len(descriptions)+1)
	options = append(options, PollOption{Text: truncate(official, PollOptionMaxLen)})

	// Deterministic base order before the shuffle, so equal shuffles
	// produce equal polls.
	authors := make([]UserID, 0, len(descriptions))
	for author := range descriptions {
		authors = append(authors, author)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i] < authors[j] })
	for _, author := range authors {
		a := author
		options = append(options, PollOption{
			Text:   truncate(descriptions[author], PollOptionMaxLen),
			Author: &a,
		})
	}

	shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, nil
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
