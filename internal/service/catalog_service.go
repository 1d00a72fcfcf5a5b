package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"streamgate/internal/model"
	"streamgate/internal/ratelimit"
	"streamgate/internal/repository"

	"github.com/sirupsen/logrus"
)

// CatalogService serves the movie, show, live TV and login screen collections
type CatalogService struct {
	movies      repository.MovieRepo
	shows       repository.ShowRepo
	channels    repository.LiveChannelRepo
	backgrounds repository.BackgroundRepo
	settings    repository.SettingsRepo
	codes       repository.AccessCodeRepo
	clock       ratelimit.Clock
	log         *logrus.Entry
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	movies repository.MovieRepo,
	shows repository.ShowRepo,
	channels repository.LiveChannelRepo,
	backgrounds repository.BackgroundRepo,
	settings repository.SettingsRepo,
	codes repository.AccessCodeRepo,
	log *logrus.Entry,
) *CatalogService {
	return &CatalogService{
		movies:      movies,
		shows:       shows,
		channels:    channels,
		backgrounds: backgrounds,
		settings:    settings,
		codes:       codes,
		clock:       ratelimit.SystemClock,
		log:         log,
	}
}

// SetClock replaces the wall clock used for settings timestamps
func (s *CatalogService) SetClock(c ratelimit.Clock) {
	s.clock = c
}

// matches is the linear filter applied to every listing: case-insensitive
// substring on the name and case-insensitive equality on genre/category
func matches(f model.CatalogFilter, name, genre string) bool {
	if q := strings.TrimSpace(f.Query); q != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(q)) {
		return false
	}
	if g := strings.TrimSpace(f.Genre); g != "" && !strings.EqualFold(genre, g) {
		return false
	}
	return true
}

// yearOf parses the leading year of values like "2019" or "2019-2022"
func yearOf(y string) int {
	y = strings.TrimSpace(y)
	if len(y) > 4 {
		y = y[:4]
	}
	n, _ := strconv.Atoi(y)
	return n
}

// Movies

// ListMovies returns movies matching f, newest year first
func (s *CatalogService) ListMovies(ctx context.Context, f model.CatalogFilter) ([]*model.Movie, error) {
	all, err := s.movies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	out := make([]*model.Movie, 0, len(all))
	for _, m := range all {
		if matches(f, m.Title, m.Genre) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return yearOf(out[i].Year) > yearOf(out[j].Year) })
	return out, nil
}

func (s *CatalogService) GetMovie(ctx context.Context, id string) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if m == nil {
		return nil, ErrItemNotFound
	}
	return m, nil
}

func (s *CatalogService) CreateMovie(ctx context.Context, m *model.Movie) (*model.Movie, error) {
	if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.VideoURL) == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.movies.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	s.log.WithField("movie_id", m.ID).Info("movie created")
	return m, nil
}

func (s *CatalogService) UpdateMovie(ctx context.Context, m *model.Movie) error {
	ok, err := s.movies.Update(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

func (s *CatalogService) DeleteMovie(ctx context.Context, id string) error {
	ok, err := s.movies.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if !ok {
		return ErrItemNotFound
	}
	s.log.WithField("movie_id", id).Info("movie deleted")
	return nil
}

// Series and anime

// ListShows returns shows of kind matching f, sorted by title
func (s *CatalogService) ListShows(ctx context.Context, kind model.ShowKind, f model.CatalogFilter) ([]*model.Show, error) {
	all, err := s.shows.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	out := make([]*model.Show, 0, len(all))
	for _, sh := range all {
		if matches(f, sh.Title, sh.Genre) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *CatalogService) GetShow(ctx context.Context, kind model.ShowKind, id string) (*model.Show, error) {
	sh, err := s.shows.GetByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	if sh == nil {
		return nil, ErrItemNotFound
	}
	return sh, nil
}

func (s *CatalogService) CreateShow(ctx context.Context, sh *model.Show) (*model.Show, error) {
	if strings.TrimSpace(sh.Title) == "" {
		return nil, ErrMissingFields
	}
	if sh.Seasons == nil {
		sh.Seasons = []model.Season{}
	}
	if _, err := s.shows.Create(ctx, sh); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", sh.Kind, err)
	}
	s.log.WithFields(logrus.Fields{"show_id": sh.ID, "kind": sh.Kind}).Info("show created")
	return sh, nil
}

func (s *CatalogService) UpdateShow(ctx context.Context, sh *model.Show) error {
	ok, err := s.shows.Update(ctx, sh)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", sh.Kind, err)
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

func (s *CatalogService) DeleteShow(ctx context.Context, kind model.ShowKind, id string) error {
	ok, err := s.shows.Delete(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if !ok {
		return ErrItemNotFound
	}
	s.log.WithFields(logrus.Fields{"show_id": id, "kind": kind}).Info("show deleted")
	return nil
}

// Live TV

// ListChannels returns channels matching f; Genre matches the category
func (s *CatalogService) ListChannels(ctx context.Context, f model.CatalogFilter) ([]*model.LiveChannel, error) {
	all, err := s.channels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	out := make([]*model.LiveChannel, 0, len(all))
	for _, c := range all {
		if matches(f, c.Name, c.Category) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CatalogService) GetChannel(ctx context.Context, id string) (*model.LiveChannel, error) {
	c, err := s.channels.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	if c == nil {
		return nil, ErrItemNotFound
	}
	return c, nil
}

func (s *CatalogService) CreateChannel(ctx context.Context, c *model.LiveChannel) (*model.LiveChannel, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.StreamURL) == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.channels.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	s.log.WithField("channel_id", c.ID).Info("channel created")
	return c, nil
}

func (s *CatalogService) UpdateChannel(ctx context.Context, c *model.LiveChannel) error {
	ok, err := s.channels.Update(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

func (s *CatalogService) DeleteChannel(ctx context.Context, id string) error {
	ok, err := s.channels.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

// Login backgrounds

// ListBackgrounds returns background images ordered by display order
func (s *CatalogService) ListBackgrounds(ctx context.Context, activeOnly bool) ([]*model.BackgroundImage, error) {
	out, err := s.backgrounds.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list backgrounds: %w", err)
	}
	return out, nil
}

func (s *CatalogService) GetBackground(ctx context.Context, id string) (*model.BackgroundImage, error) {
	b, err := s.backgrounds.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get background: %w", err)
	}
	if b == nil {
		return nil, ErrItemNotFound
	}
	return b, nil
}

func (s *CatalogService) CreateBackground(ctx context.Context, b *model.BackgroundImage) (*model.BackgroundImage, error) {
	if strings.TrimSpace(b.URL) == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.backgrounds.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create background: %w", err)
	}
	return b, nil
}

func (s *CatalogService) UpdateBackground(ctx context.Context, b *model.BackgroundImage) error {
	ok, err := s.backgrounds.Update(ctx, b)
	if err != nil {
		return fmt.Errorf("failed to update background: %w", err)
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

// ToggleBackground flips the active flag and returns the updated image
func (s *CatalogService) ToggleBackground(ctx context.Context, id string) (*model.BackgroundImage, error) {
	b, err := s.GetBackground(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Active = !b.Active
	if err := s.UpdateBackground(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *CatalogService) DeleteBackground(ctx context.Context, id string) error {
	ok, err := s.backgrounds.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete background: %w", err)
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

// Settings

// Welcome returns the welcome message, empty when none was ever set
func (s *CatalogService) Welcome(ctx context.Context) (*model.WelcomeMessage, error) {
	msg, err := s.settings.GetWelcome(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get welcome message: %w", err)
	}
	if msg == nil {
		return &model.WelcomeMessage{}, nil
	}
	return msg, nil
}

func (s *CatalogService) SetWelcome(ctx context.Context, message string) (*model.WelcomeMessage, error) {
	msg := &model.WelcomeMessage{Message: strings.TrimSpace(message), UpdatedAt: s.clock.Now()}
	if err := s.settings.SetWelcome(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save welcome message: %w", err)
	}
	return msg, nil
}

// Stats counts catalog entries and access codes
func (s *CatalogService) Stats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	var err error
	if st.Movies, err = s.movies.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}
	if st.Series, err = s.shows.Count(ctx, model.ShowSeries); err != nil {
		return nil, fmt.Errorf("failed to count series: %w", err)
	}
	if st.Anime, err = s.shows.Count(ctx, model.ShowAnime); err != nil {
		return nil, fmt.Errorf("failed to count anime: %w", err)
	}
	if st.LiveChannels, err = s.channels.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count channels: %w", err)
	}
	if st.Pins, st.ActivePins, err = s.codes.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count access codes: %w", err)
	}
	return &st, nil
}
