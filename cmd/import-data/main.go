// Command import-data seeds the database from a directory of CSV files
// (category.csv, genre.csv, titles.csv, genre_title.csv, users.csv,
// review.csv, comments.csv). Rows are upserted by their CSV id, so the
// import can be re-run after the source files change.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reviewhub/database"
	"reviewhub/internal/api/models"
	"reviewhub/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dir := "data"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := importAll(db, dir, logger); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	logger.Info("import completed")
}

func importAll(db *gorm.DB, dir string, logger *slog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if n, err := importCategories(tx, filepath.Join(dir, "category.csv")); err != nil {
			return fmt.Errorf("category.csv: %w", err)
		} else {
			logger.Info("imported categories", "count", n)
		}
		if n, err := importGenres(tx, filepath.Join(dir, "genre.csv")); err != nil {
			return fmt.Errorf("genre.csv: %w", err)
		} else {
			logger.Info("imported genres", "count", n)
		}
		if n, err := importTitles(tx, filepath.Join(dir, "titles.csv")); err != nil {
			return fmt.Errorf("titles.csv: %w", err)
		} else {
			logger.Info("imported titles", "count", n)
		}
		if n, err := importTitleGenres(tx, filepath.Join(dir, "genre_title.csv")); err != nil {
			return fmt.Errorf("genre_title.csv: %w", err)
		} else {
			logger.Info("imported title-genre links", "count", n)
		}

		// Users come with integer ids in the CSV but are stored under
		// uuid primary keys, so reviews and comments resolve their
		// author through this map.
		userIDs, err := importUsers(tx, filepath.Join(dir, "users.csv"))
		if err != nil {
			return fmt.Errorf("users.csv: %w", err)
		}
		logger.Info("imported users", "count", len(userIDs))

		if n, err := importReviews(tx, filepath.Join(dir, "review.csv"), userIDs); err != nil {
			return fmt.Errorf("review.csv: %w", err)
		} else {
			logger.Info("imported reviews", "count", n)
		}
		if n, err := importComments(tx, filepath.Join(dir, "comments.csv"), userIDs); err != nil {
			return fmt.Errorf("comments.csv: %w", err)
		} else {
			logger.Info("imported comments", "count", n)
		}

		return resetSequences(tx)
	})
}

// row is one CSV record addressed by column name.
type row map[string]string

func (r row) int64(col string) (int64, error) {
	v, err := strconv.ParseInt(r[col], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

func (r row) timestamp(col string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, r[col])
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

// readCSV reads the file and pairs each record with the header row.
func readCSV(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	header := records[0]
	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		r := make(row, len(header))
		for i, col := range header {
			if i < len(rec) {
				r[col] = rec[i]
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func upsert(tx *gorm.DB, value any, conflictCols []string, updateCols []string) error {
	cols := make([]clause.Column, len(conflictCols))
	for i, c := range conflictCols {
		cols[i] = clause.Column{Name: c}
	}
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(updateCols),
	}).Create(value).Error
}

func importCategories(tx *gorm.DB, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return 0, err
		}
		c := models.Category{ID: id, Name: r["name"], Slug: r["slug"]}
		if err := upsert(tx, &c, []string{"id"}, []string{"name", "slug"}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importGenres(tx *gorm.DB, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return 0, err
		}
		g := models.Genre{ID: id, Name: r["name"], Slug: r["slug"]}
		if err := upsert(tx, &g, []string{"id"}, []string{"name", "slug"}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importTitles(tx *gorm.DB, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return 0, err
		}
		year, err := strconv.Atoi(r["year"])
		if err != nil {
			return 0, fmt.Errorf("column year: %w", err)
		}
		t := models.Title{ID: id, Name: r["name"], Year: year, Description: r["description"]}
		if v := r["category"]; v != "" {
			categoryID, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("column category: %w", err)
			}
			t.CategoryID = &categoryID
		}
		if err := upsert(tx, &t, []string{"id"}, []string{"name", "year", "description", "category_id"}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importTitleGenres(tx *gorm.DB, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return 0, err
		}
		titleID, err := r.int64("title_id")
		if err != nil {
			return 0, err
		}
		genreID, err := r.int64("genre_id")
		if err != nil {
			return 0, err
		}
		tg := models.TitleGenre{ID: id, TitleID: titleID, GenreID: genreID}
		if err := upsert(tx, &tg, []string{"id"}, []string{"title_id", "genre_id"}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// importUsers returns a map from CSV user id to the stored uuid.
func importUsers(tx *gorm.DB, path string) (map[string]string, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(rows))
	for _, r := range rows {
		role := r["role"]
		if role == "" {
			role = models.RoleUser
		}
		u := models.User{
			Username:  r["username"],
			Email:     r["email"],
			Role:      role,
			Bio:       r["bio"],
			FirstName: r["first_name"],
			LastName:  r["last_name"],
		}

		// Re-running the import must not duplicate accounts, so an
		// existing username keeps its uuid and gets updated in place.
		var existing models.User
		err := tx.Where("username = ?", u.Username).First(&existing).Error
		switch {
		case err == nil:
			u.ID = existing.ID
			if err := tx.Model(&existing).Updates(map[string]any{
				"email":      u.Email,
				"role":       u.Role,
				"bio":        u.Bio,
				"first_name": u.FirstName,
				"last_name":  u.LastName,
			}).Error; err != nil {
				return nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			u.ID = uuid.New().String()
			if err := tx.Create(&u).Error; err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
		ids[r["id"]] = u.ID
	}
	return ids, nil
}

func importReviews(tx *gorm.DB, path string, userIDs map[string]string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return 0, err
		}
		titleID, err := r.int64("title_id")
		if err != nil {
			return 0, err
		}
		score, err := strconv.Atoi(r["score"])
		if err != nil {
			return 0, fmt.Errorf("column score: %w", err)
		}
		authorID, ok := userIDs[r["author"]]
		if !ok {
			return 0, fmt.Errorf("review %d: unknown author %s", id, r["author"])
		}
		pubDate, err := r.timestamp("pub_date")
		if err != nil {
			return 0, err
		}
		rev := models.Review{
			ID:      id,
			TitleID: titleID,
			Score:   score,
			Authored: models.Authored{
				AuthorID: authorID,
				Text:     r["text"],
				PubDate:  pubDate,
			},
		}
		if err := upsert(tx, &rev, []string{"id"}, []string{"title_id", "score", "author_id", "text", "pub_date"}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importComments(tx *gorm.DB, path string, userIDs map[string]string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return 0, err
		}
		reviewID, err := r.int64("review_id")
		if err != nil {
			return 0, err
		}
		authorID, ok := userIDs[r["author"]]
		if !ok {
			return 0, fmt.Errorf("comment %d: unknown author %s", id, r["author"])
		}
		pubDate, err := r.timestamp("pub_date")
		if err != nil {
			return 0, err
		}
		c := models.Comment{
			ID:       id,
			ReviewID: reviewID,
			Authored: models.Authored{
				AuthorID: authorID,
				Text:     r["text"],
				PubDate:  pubDate,
			},
		}
		if err := upsert(tx, &c, []string{"id"}, []string{"review_id", "author_id", "text", "pub_date"}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// resetSequences moves each serial sequence past the highest imported id so
// rows created through the API do not collide with seeded ones.
func resetSequences(tx *gorm.DB) error {
	for _, table := range []string{"categories", "genres", "titles", "title_genres", "reviews", "comments"} {
		stmt := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s`,
			table, table,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
