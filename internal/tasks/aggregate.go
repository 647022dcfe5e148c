package tasks

import (
	"cmp"
	"slices"

	"github.com/desertthunder/spotlens/internal/models"
)

const genreTopN = 5

// artistAccumulator is the running state for one artist in [GroupByArtist].
type artistAccumulator struct {
	songCount int
	total     int
}

// weightedCounter sums weights per name and remembers first-encounter order for tie breaking.
type weightedCounter struct {
	order   []string
	weights map[string]int
}

func newWeightedCounter() *weightedCounter {
	return &weightedCounter{weights: map[string]int{}}
}

func (c *weightedCounter) add(name string, weight int) {
	if _, ok := c.weights[name]; !ok {
		c.order = append(c.order, name)
	}
	c.weights[name] += weight
}

// mostCommon returns the n heaviest names, ties in first-encounter order.
func (c *weightedCounter) mostCommon(n int) []models.ArtistWeight {
	out := make([]models.ArtistWeight, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, models.ArtistWeight{Name: name, TotalPlayCount: c.weights[name]})
	}
	slices.SortStableFunc(out, func(a, b models.ArtistWeight) int {
		return cmp.Compare(b.TotalPlayCount, a.TotalPlayCount)
	})
	return out[:min(n, len(out))]
}

// genreAccumulator is the running state for one genre in [GroupByGenre].
type genreAccumulator struct {
	songs   []models.Song
	artists *weightedCounter
}

// GroupByArtist summarizes songs per artist name, in order of first appearance.
func GroupByArtist(songs []models.Song) []models.ArtistSummary {
	var order []string
	acc := make(map[string]*artistAccumulator)

	for _, s := range songs {
		a, ok := acc[s.Artist()]
		if !ok {
			a = &artistAccumulator{}
			acc[s.Artist()] = a
			order = append(order, s.Artist())
		}
		a.songCount++
		a.total += s.PlayCount()
	}

	summaries := make([]models.ArtistSummary, 0, len(order))
	for _, name := range order {
		a := acc[name]
		summaries = append(summaries, models.ArtistSummary{Name: name, SongCount: a.songCount, TotalPlayCount: a.total})
	}
	return summaries
}

// GroupByGenre summarizes songs per genre tag, in order of first appearance.
//
// A song with k genres counts toward k summaries.
func GroupByGenre(songs []models.Song) []models.GenreSummary {
	var order []string
	acc := make(map[string]*genreAccumulator)

	for _, s := range songs {
		for _, genre := range s.Genres() {
			g, ok := acc[genre]
			if !ok {
				g = &genreAccumulator{artists: newWeightedCounter()}
				acc[genre] = g
				order = append(order, genre)
			}
			g.songs = append(g.songs, s)
			g.artists.add(s.Artist(), s.PlayCount())
		}
	}

	summaries := make([]models.GenreSummary, 0, len(order))
	for _, genre := range order {
		g := acc[genre]
		total := 0
		for _, s := range g.songs {
			total += s.PlayCount()
		}
		summaries = append(summaries, models.GenreSummary{
			Name:           genre,
			SongCount:      len(g.songs),
			TotalPlayCount: total,
			TopArtists:     g.artists.mostCommon(genreTopN),
			TopSongs:       TopN(g.songs, genreTopN),
		})
	}
	return summaries
}

// TopN returns the n songs with the highest play count, descending. Equal counts keep their input order.
func TopN(songs []models.Song, n int) []models.Song {
	if n <= 0 || len(songs) == 0 {
		return []models.Song{}
	}
	sorted := slices.Clone(songs)
	slices.SortStableFunc(sorted, func(a, b models.Song) int {
		return cmp.Compare(b.PlayCount(), a.PlayCount())
	})
	return sorted[:min(n, len(sorted))]
}

// TopArtists returns the n artist summaries with the highest total play count. Ties keep their input order.
func TopArtists(summaries []models.ArtistSummary, n int) []models.ArtistSummary {
	if n <= 0 || len(summaries) == 0 {
		return []models.ArtistSummary{}
	}
	sorted := slices.Clone(summaries)
	slices.SortStableFunc(sorted, func(a, b models.ArtistSummary) int {
		return cmp.Compare(b.TotalPlayCount, a.TotalPlayCount)
	})
	return sorted[:min(n, len(sorted))]
}
