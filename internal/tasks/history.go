package tasks

import (
	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/services"
)

const (
	topTracksPerArtist = 5
	defaultPopularity  = 50
)

// GroupTopTracksByArtist maps every credited artist to at most five of their top track names, in ranking order.
func GroupTopTracksByArtist(tracks []services.SpotifyTrack) map[string][]string {
	byArtist := make(map[string][]string)
	for _, track := range tracks {
		for _, artist := range track.Artists {
			names := byArtist[artist.Name]
			if len(names) < topTracksPerArtist {
				byArtist[artist.Name] = append(names, track.Name)
			}
		}
	}
	return byArtist
}

// GroupArtistsAndGenres turns top artists into play counts and a genre distribution.
//
// An artist's popularity stands in for its play count (50 when the API omits it). Each genre's play count
// is the summed popularity of the artists carrying it; genres appear in order of first encounter.
func GroupArtistsAndGenres(artists []services.SpotifyArtist, trackMap map[string][]string) ([]models.ArtistPlayCount, []models.GenrePlayCount) {
	playCounts := make([]models.ArtistPlayCount, 0, len(artists))
	counter := newWeightedCounter()

	for _, artist := range artists {
		popularity := defaultPopularity
		if artist.Popularity != nil {
			popularity = *artist.Popularity
		}

		topTracks := trackMap[artist.Name]
		if topTracks == nil {
			topTracks = []string{}
		}
		playCounts = append(playCounts, models.ArtistPlayCount{
			Name:      artist.Name,
			PlayCount: popularity,
			TopTracks: topTracks,
		})

		for _, genre := range artist.Genres {
			counter.add(genre, popularity)
		}
	}

	distribution := make([]models.GenrePlayCount, 0, len(counter.order))
	for _, genre := range counter.order {
		distribution = append(distribution, models.GenrePlayCount{Genre: genre, PlayCount: counter.weights[genre]})
	}
	return playCounts, distribution
}
