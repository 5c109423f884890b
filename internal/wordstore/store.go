// Package wordstore owns the vocabulary: it adds words through the
// translation provider and exposes the filtered reads the quiz and
// flashcard engines are built on.
package wordstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/vocab/internal/database"
	"github.com/example/vocab/internal/translate"
	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyExists          = errors.New("word already exists")
	ErrTranslationUnavailable = errors.New("translation unavailable")
	ErrNotFound               = errors.New("word not found")
	ErrEmptyWord              = errors.New("word is empty")
	ErrInvalidDifficulty      = errors.New("invalid difficulty")
)

// Repository is the persistence the store needs
type Repository interface {
	Create(ctx context.Context, word *models.Word) error
	Update(ctx context.Context, word *models.Word) error
	GetByEnglish(ctx context.Context, english string) (*models.Word, error)
	List(ctx context.Context, filter database.WordFilter) ([]models.Word, error)
	Search(ctx context.Context, pattern string) ([]models.Word, error)
	MissingExamples(ctx context.Context, limit int) ([]models.Word, error)
	UpdateDifficulty(ctx context.Context, english string, difficulty models.Difficulty) error
	UpdateGroup(ctx context.Context, english string, group sql.NullString) error
	UpdateExamples(ctx context.Context, english string, examples sql.NullString) error
	Delete(ctx context.Context, english string) error
	DistinctGroups(ctx context.Context) ([]string, error)
	RenameGroup(ctx context.Context, from string, to sql.NullString) (int64, error)
	CountByDifficulty(ctx context.Context) (map[models.Difficulty]int, error)
	CountByGroup(ctx context.Context) (map[string]int, error)
}

// Store is the word store
type Store struct {
	repo     Repository
	provider translate.Provider
	log      zerolog.Logger
}

// New creates a store. provider may be nil when words are never added by lookup.
func New(repo Repository, provider translate.Provider, log zerolog.Logger) *Store {
	return &Store{
		repo:     repo,
		provider: provider,
		log:      log.With().Str("component", "wordstore").Logger(),
	}
}

// AddWord looks up the translation of english and stores it as a new word.
// Examples are best effort: a failed lookup leaves them empty.
func (s *Store) AddWord(ctx context.Context, english, group string) (*models.Word, error) {
	english = models.NormalizeEnglish(english)
	if english == "" {
		return nil, ErrEmptyWord
	}

	if _, err := s.repo.GetByEnglish(ctx, english); err == nil {
		return nil, errors.Wrapf(ErrAlreadyExists, "%q", english)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if s.provider == nil {
		return nil, errors.Wrapf(ErrTranslationUnavailable, "%q: no translation provider", english)
	}

	// translation and examples usually come from the same page
	ctx = translate.WithPageCache(ctx)
	translation, err := s.provider.Translate(ctx, english)
	if err != nil {
		return nil, errors.Wrapf(ErrTranslationUnavailable, "%q: %v", english, err)
	}
	if strings.TrimSpace(translation) == "" {
		return nil, errors.Wrapf(ErrTranslationUnavailable, "%q", english)
	}

	examples, err := s.provider.FetchExamples(ctx, english)
	if err != nil {
		s.log.Warn().Err(err).Str("word", english).Msg("failed to fetch examples")
		examples = ""
	}

	word := &models.Word{
		English:     english,
		Translation: translation,
		Examples:    models.NullString(examples),
		Difficulty:  models.DifficultyNew,
		Group:       models.NullString(group),
	}
	if err := s.repo.Create(ctx, word); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, errors.Wrapf(ErrAlreadyExists, "%q", english)
		}
		return nil, err
	}

	s.log.Info().Str("word", english).Str("translation", translation).Msg("word added")
	return word, nil
}

// ImportWord stores a complete entry, updating the existing word with the
// same english key. It reports whether a new word was created.
func (s *Store) ImportWord(ctx context.Context, word models.Word) (bool, error) {
	word.English = models.NormalizeEnglish(word.English)
	if word.English == "" {
		return false, ErrEmptyWord
	}
	if word.Difficulty == "" {
		word.Difficulty = models.DifficultyNew
	}
	if !word.Difficulty.Valid() {
		return false, errors.Wrapf(ErrInvalidDifficulty, "%q", word.Difficulty)
	}

	err := s.repo.Create(ctx, &word)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, database.ErrDuplicate) {
		return false, err
	}
	return false, s.repo.Update(ctx, &word)
}

// UpdateDifficulty sets the difficulty of a word
func (s *Store) UpdateDifficulty(ctx context.Context, english string, difficulty models.Difficulty) error {
	if !difficulty.Valid() {
		return errors.Wrapf(ErrInvalidDifficulty, "%q", difficulty)
	}
	return mapNotFound(s.repo.UpdateDifficulty(ctx, english, difficulty))
}

// UpdateGroup assigns a word to a group; an empty group removes the assignment
func (s *Store) UpdateGroup(ctx context.Context, english, group string) error {
	return mapNotFound(s.repo.UpdateGroup(ctx, english, models.NullString(group)))
}

// UpdateExamples replaces the example sentences of a word
func (s *Store) UpdateExamples(ctx context.Context, english, examples string) error {
	return mapNotFound(s.repo.UpdateExamples(ctx, english, models.NullString(examples)))
}

// DeleteWord removes a word
func (s *Store) DeleteWord(ctx context.Context, english string) error {
	return mapNotFound(s.repo.Delete(ctx, english))
}

// AllWords returns the whole vocabulary
func (s *Store) AllWords(ctx context.Context) ([]models.Word, error) {
	return s.repo.List(ctx, database.WordFilter{})
}

// WordsByDifficulty returns words with any of the given difficulties
func (s *Store) WordsByDifficulty(ctx context.Context, difficulties []models.Difficulty) ([]models.Word, error) {
	if len(difficulties) == 0 {
		return []models.Word{}, nil
	}
	return s.repo.List(ctx, database.WordFilter{Difficulties: difficulties})
}

// WordsByGroup returns words belonging to any of the given groups
func (s *Store) WordsByGroup(ctx context.Context, groups []string) ([]models.Word, error) {
	if len(groups) == 0 {
		return []models.Word{}, nil
	}
	return s.repo.List(ctx, database.WordFilter{Groups: groups})
}

// Words returns words matching both filters; an empty filter is not applied
func (s *Store) Words(ctx context.Context, difficulties []models.Difficulty, groups []string) ([]models.Word, error) {
	return s.repo.List(ctx, database.WordFilter{Difficulties: difficulties, Groups: groups})
}

// Search finds words by a fragment of the english word or the translation
func (s *Store) Search(ctx context.Context, pattern string) ([]models.Word, error) {
	return s.repo.Search(ctx, strings.TrimSpace(pattern))
}

// DistinctGroups returns the group names in use
func (s *Store) DistinctGroups(ctx context.Context) ([]string, error) {
	return s.repo.DistinctGroups(ctx)
}

// WordDetails returns the word or nil when it does not exist
func (s *Store) WordDetails(ctx context.Context, english string) (*models.Word, error) {
	word, err := s.repo.GetByEnglish(ctx, english)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return word, err
}

// RenameGroup moves all words of a group to a new name
func (s *Store) RenameGroup(ctx context.Context, from, to string) (int64, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return 0, errors.New("group names must not be empty")
	}
	n, err := s.repo.RenameGroup(ctx, from, models.NullString(to))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.Wrapf(ErrNotFound, "group %q", from)
	}
	return n, nil
}

// DeleteGroup removes a group. Its words move to reassignTo, or become
// ungrouped when reassignTo is empty.
func (s *Store) DeleteGroup(ctx context.Context, name, reassignTo string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("group name must not be empty")
	}
	n, err := s.repo.RenameGroup(ctx, name, models.NullString(reassignTo))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.Wrapf(ErrNotFound, "group %q", name)
	}
	return n, nil
}

// Statistics counts words by difficulty and group
func (s *Store) Statistics(ctx context.Context) (*models.Statistics, error) {
	byDifficulty, err := s.repo.CountByDifficulty(ctx)
	if err != nil {
		return nil, err
	}
	byGroup, err := s.repo.CountByGroup(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Statistics{ByDifficulty: byDifficulty, ByGroup: byGroup}
	for _, n := range byDifficulty {
		stats.Total += n
	}
	return stats, nil
}

// WordsMissingExamples returns up to limit words that have no examples yet
func (s *Store) WordsMissingExamples(ctx context.Context, limit int) ([]models.Word, error) {
	return s.repo.MissingExamples(ctx, limit)
}

func mapNotFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return errors.Wrap(ErrNotFound, err.Error())
	}
	return err
}
