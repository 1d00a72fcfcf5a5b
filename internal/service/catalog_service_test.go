package service

import (
	"context"
	"testing"

	"streamgate/internal/model"
	"streamgate/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *repotest.Codes) {
	t.Helper()
	codes := repotest.NewCodes()
	svc := NewCatalogService(
		repotest.NewMovies(),
		repotest.NewShows(),
		repotest.NewChannels(),
		repotest.NewBackgrounds(),
		&repotest.Settings{},
		codes,
		testLog,
	)
	svc.SetClock(repotest.NewClock())
	return svc, codes
}

func TestListMovies_FilterAndSort(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogFixture(t)

	for _, m := range []model.Movie{
		{Title: "The Matrix", VideoURL: "v1", Year: "1999", Genre: "Sci-Fi"},
		{Title: "Matrix Resurrections", VideoURL: "v2", Year: "2021", Genre: "Sci-Fi"},
		{Title: "Amélie", VideoURL: "v3", Year: "2001", Genre: "Comedy"},
	} {
		m := m
		_, err := svc.CreateMovie(ctx, &m)
		require.NoError(t, err)
	}

	all, err := svc.ListMovies(ctx, model.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Matrix Resurrections", all[0].Title)
	assert.Equal(t, "The Matrix", all[2].Title)

	byQuery, err := svc.ListMovies(ctx, model.CatalogFilter{Query: "MATRIX"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 2)

	byGenre, err := svc.ListMovies(ctx, model.CatalogFilter{Genre: "comedy"})
	require.NoError(t, err)
	require.Len(t, byGenre, 1)
	assert.Equal(t, "Amélie", byGenre[0].Title)

	none, err := svc.ListMovies(ctx, model.CatalogFilter{Query: "matrix", Genre: "Comedy"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMovieCRUD(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogFixture(t)

	_, err := svc.CreateMovie(ctx, &model.Movie{Title: "no video"})
	assert.ErrorIs(t, err, ErrMissingFields)

	m, err := svc.CreateMovie(ctx, &model.Movie{Title: "Heat", VideoURL: "v"})
	require.NoError(t, err)

	m.Rating = "8.3"
	require.NoError(t, svc.UpdateMovie(ctx, m))
	got, err := svc.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.3", got.Rating)

	require.NoError(t, svc.DeleteMovie(ctx, m.ID))
	_, err = svc.GetMovie(ctx, m.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, svc.DeleteMovie(ctx, m.ID), ErrItemNotFound)
	assert.ErrorIs(t, svc.UpdateMovie(ctx, m), ErrItemNotFound)
}

func TestShows_KindsAreSeparate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogFixture(t)

	series, err := svc.CreateShow(ctx, &model.Show{Kind: model.ShowSeries, Title: "Dark"})
	require.NoError(t, err)
	assert.NotNil(t, series.Seasons)
	_, err = svc.CreateShow(ctx, &model.Show{Kind: model.ShowAnime, Title: "Cowboy Bebop", Genre: "Action"})
	require.NoError(t, err)

	list, err := svc.ListShows(ctx, model.ShowSeries, model.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dark", list[0].Title)

	_, err = svc.GetShow(ctx, model.ShowAnime, series.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, svc.DeleteShow(ctx, model.ShowAnime, series.ID), ErrItemNotFound)
	assert.NoError(t, svc.DeleteShow(ctx, model.ShowSeries, series.ID))
}

func TestChannels_FilterByCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogFixture(t)

	_, err := svc.CreateChannel(ctx, &model.LiveChannel{Name: "News 24", Category: "News", StreamURL: "s1"})
	require.NoError(t, err)
	_, err = svc.CreateChannel(ctx, &model.LiveChannel{Name: "Sport One", Category: "Sports", StreamURL: "s2"})
	require.NoError(t, err)
	_, err = svc.CreateChannel(ctx, &model.LiveChannel{Name: "no stream"})
	assert.ErrorIs(t, err, ErrMissingFields)

	list, err := svc.ListChannels(ctx, model.CatalogFilter{Genre: "sports"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sport One", list[0].Name)
}

func TestBackgrounds_ActiveOrderedAndToggle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogFixture(t)

	second, err := svc.CreateBackground(ctx, &model.BackgroundImage{URL: "b.jpg", Order: 2, Active: true})
	require.NoError(t, err)
	_, err = svc.CreateBackground(ctx, &model.BackgroundImage{URL: "a.jpg", Order: 1, Active: true})
	require.NoError(t, err)
	_, err = svc.CreateBackground(ctx, &model.BackgroundImage{URL: "off.jpg", Order: 0})
	require.NoError(t, err)

	active, err := svc.ListBackgrounds(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a.jpg", active[0].URL)

	toggled, err := svc.ToggleBackground(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	active, _ = svc.ListBackgrounds(ctx, true)
	assert.Len(t, active, 1)
	all, _ := svc.ListBackgrounds(ctx, false)
	assert.Len(t, all, 3)
}

func TestWelcomeMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogFixture(t)

	msg, err := svc.Welcome(ctx)
	require.NoError(t, err)
	assert.Empty(t, msg.Message)

	_, err = svc.SetWelcome(ctx, "  Bem-vindo!  ")
	require.NoError(t, err)
	msg, err = svc.Welcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bem-vindo!", msg.Message)
	assert.False(t, msg.UpdatedAt.IsZero())
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, codes := newCatalogFixture(t)

	_, _ = svc.CreateMovie(ctx, &model.Movie{Title: "Heat", VideoURL: "v"})
	_, _ = svc.CreateShow(ctx, &model.Show{Kind: model.ShowSeries, Title: "Dark"})
	_, _ = svc.CreateShow(ctx, &model.Show{Kind: model.ShowAnime, Title: "Bebop"})
	_, _ = svc.CreateShow(ctx, &model.Show{Kind: model.ShowAnime, Title: "Akira"})
	codes.Add(model.AccessCode{Code: "A00001", IsActive: true})
	codes.Add(model.AccessCode{Code: "A00002"})

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{Movies: 1, Series: 1, Anime: 2, Pins: 2, ActivePins: 1}, *st)
}
