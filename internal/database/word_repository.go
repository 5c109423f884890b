package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/vocab/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const wordColumns = "id, english, translation, examples, difficulty, group_name, created_at, updated_at"

// WordFilter restricts List results. Empty slices mean "no restriction".
type WordFilter struct {
	Difficulties []models.Difficulty
	Groups       []string
}

// WordRepository handles database operations for words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Create inserts a new word and reloads it with the generated fields
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	word.English = models.NormalizeEnglish(word.English)
	if word.Difficulty == "" {
		word.Difficulty = models.DifficultyNew
	}

	query := r.db.Rebind(`
		INSERT INTO vocabulary (english, translation, examples, difficulty, group_name)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		word.English,
		word.Translation,
		word.Examples,
		word.Difficulty,
		word.Group,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(ErrDuplicate, "word %q", word.English)
		}
		return errors.Wrap(err, "failed to create word")
	}

	created, err := r.GetByEnglish(ctx, word.English)
	if err != nil {
		return err
	}
	*word = *created
	return nil
}

// Update overwrites translation, examples, difficulty and group of an existing word
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	query := r.db.Rebind(`
		UPDATE vocabulary SET
			translation = ?,
			examples = ?,
			difficulty = ?,
			group_name = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE english = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		word.Translation,
		word.Examples,
		word.Difficulty,
		word.Group,
		models.NormalizeEnglish(word.English),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update word")
	}
	return expectRow(res, word.English)
}

// GetByEnglish returns a word by its english key
func (r *WordRepository) GetByEnglish(ctx context.Context, english string) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT " + wordColumns + " FROM vocabulary WHERE english = ?")
	err := r.db.GetContext(ctx, &word, query, models.NormalizeEnglish(english))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "word %q", english)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word")
	}
	return &word, nil
}

// List returns words matching the filter ordered by english
func (r *WordRepository) List(ctx context.Context, filter WordFilter) ([]models.Word, error) {
	var (
		where []string
		args  []interface{}
	)
	if len(filter.Difficulties) > 0 {
		where = append(where, "difficulty IN (?)")
		args = append(args, filter.Difficulties)
	}
	if len(filter.Groups) > 0 {
		where = append(where, "group_name IN (?)")
		args = append(args, filter.Groups)
	}

	query := "SELECT " + wordColumns + " FROM vocabulary"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY english"

	if len(args) > 0 {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build word filter")
		}
	}

	words := []models.Word{}
	if err := r.db.SelectContext(ctx, &words, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to get words")
	}
	return words, nil
}

// Search finds words whose english or translation contains the pattern
func (r *WordRepository) Search(ctx context.Context, pattern string) ([]models.Word, error) {
	like := "%" + strings.ToLower(pattern) + "%"
	query := r.db.Rebind(`
		SELECT ` + wordColumns + ` FROM vocabulary
		WHERE LOWER(english) LIKE ? OR LOWER(translation) LIKE ?
		ORDER BY english
	`)
	words := []models.Word{}
	if err := r.db.SelectContext(ctx, &words, query, like, like); err != nil {
		return nil, errors.Wrap(err, "failed to search words")
	}
	return words, nil
}

// MissingExamples returns up to limit words without example sentences
func (r *WordRepository) MissingExamples(ctx context.Context, limit int) ([]models.Word, error) {
	query := r.db.Rebind(`
		SELECT ` + wordColumns + ` FROM vocabulary
		WHERE examples IS NULL OR examples = ''
		ORDER BY created_at, id
		LIMIT ?
	`)
	words := []models.Word{}
	if err := r.db.SelectContext(ctx, &words, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to get words without examples")
	}
	return words, nil
}

// UpdateDifficulty sets the difficulty of a single word
func (r *WordRepository) UpdateDifficulty(ctx context.Context, english string, difficulty models.Difficulty) error {
	return r.updateColumn(ctx, "difficulty", english, difficulty)
}

// UpdateGroup sets or clears the group of a single word
func (r *WordRepository) UpdateGroup(ctx context.Context, english string, group sql.NullString) error {
	return r.updateColumn(ctx, "group_name", english, group)
}

// UpdateExamples sets the example sentences of a single word
func (r *WordRepository) UpdateExamples(ctx context.Context, english string, examples sql.NullString) error {
	return r.updateColumn(ctx, "examples", english, examples)
}

// column is always one of the constants above, never user input
func (r *WordRepository) updateColumn(ctx context.Context, column, english string, value interface{}) error {
	query := r.db.Rebind("UPDATE vocabulary SET " + column + " = ?, updated_at = CURRENT_TIMESTAMP WHERE english = ?")
	res, err := r.db.ExecContext(ctx, query, value, models.NormalizeEnglish(english))
	if err != nil {
		return errors.Wrapf(err, "failed to update %s", column)
	}
	return expectRow(res, english)
}

// Delete removes a word
func (r *WordRepository) Delete(ctx context.Context, english string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM vocabulary WHERE english = ?"), models.NormalizeEnglish(english))
	if err != nil {
		return errors.Wrap(err, "failed to delete word")
	}
	return expectRow(res, english)
}

// DistinctGroups returns the non-empty group names in alphabetical order
func (r *WordRepository) DistinctGroups(ctx context.Context) ([]string, error) {
	groups := []string{}
	err := r.db.SelectContext(ctx, &groups, `
		SELECT DISTINCT group_name FROM vocabulary
		WHERE group_name IS NOT NULL AND group_name != ''
		ORDER BY group_name
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get groups")
	}
	return groups, nil
}

// RenameGroup moves every word of group from to group to
func (r *WordRepository) RenameGroup(ctx context.Context, from string, to sql.NullString) (int64, error) {
	query := r.db.Rebind("UPDATE vocabulary SET group_name = ?, updated_at = CURRENT_TIMESTAMP WHERE group_name = ?")
	res, err := r.db.ExecContext(ctx, query, to, from)
	if err != nil {
		return 0, errors.Wrap(err, "failed to rename group")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get affected rows")
	}
	return n, nil
}

type countRow struct {
	Name  sql.NullString `db:"name"`
	Total int            `db:"total"`
}

// CountByDifficulty returns the number of words per difficulty
func (r *WordRepository) CountByDifficulty(ctx context.Context) (map[models.Difficulty]int, error) {
	var rows []countRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT difficulty AS name, COUNT(*) AS total FROM vocabulary GROUP BY difficulty"); err != nil {
		return nil, errors.Wrap(err, "failed to count words by difficulty")
	}
	counts := make(map[models.Difficulty]int, len(rows))
	for _, row := range rows {
		counts[models.Difficulty(row.Name.String)] = row.Total
	}
	return counts, nil
}

// CountByGroup returns the number of words per group; ungrouped words use the empty key
func (r *WordRepository) CountByGroup(ctx context.Context) (map[string]int, error) {
	var rows []countRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT group_name AS name, COUNT(*) AS total FROM vocabulary GROUP BY group_name"); err != nil {
		return nil, errors.Wrap(err, "failed to count words by group")
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Name.String] += row.Total
	}
	return counts, nil
}

func expectRow(res sql.Result, english string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get affected rows")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "word %q", english)
	}
	return nil
}
