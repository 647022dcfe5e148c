package tasks

import "github.com/desertthunder/spotlens/internal/models"

// Merge combines song collections from independent fetch paths, in precedence order, into one deduplicated list.
//
// A non-empty ID is authoritative: the first song seen with an ID wins. Songs without an ID are deduplicated
// by their case-insensitive (title, artist) pair, again keeping the first.
//
// The output is two groups concatenated: ID-less songs in encounter order, then ID'd songs in the order their
// IDs were first seen. It is not the overall encounter order. Callers must only rely on the set of songs.
func Merge(collections ...[]models.Song) []models.Song {
	byID := make(map[string]models.Song)
	var idOrder []string
	fallbackSeen := make(map[[2]string]struct{})
	var merged []models.Song

	for _, songs := range collections {
		for _, s := range songs {
			if id := s.ID(); id != "" {
				if _, ok := byID[id]; !ok {
					byID[id] = s
					idOrder = append(idOrder, id)
				}
				continue
			}

			key := s.FallbackKey()
			if _, ok := fallbackSeen[key]; !ok {
				fallbackSeen[key] = struct{}{}
				merged = append(merged, s)
			}
		}
	}

	for _, id := range idOrder {
		merged = append(merged, byID[id])
	}
	if merged == nil {
		merged = []models.Song{}
	}
	return merged
}
