package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

// ArticleLogRepository appends immutable analysis records. There is no
// update or delete path; retention is an external policy.
type ArticleLogRepository struct {
	db *sql.DB
}

func NewArticleLogRepository(db *sql.DB) *ArticleLogRepository {
	return &ArticleLogRepository{db: db}
}

func (r *ArticleLogRepository) Create(ctx context.Context, log *domain.ArticleLog) error {
	summary, nationalities, organizations, people, language, err := marshalArrays(log)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO article_logs (
	id, summary, nationalities, organizations, people, language, original_text, uploaded_file, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		log.ID, summary, nationalities, organizations, people, language,
		log.OriginalText, log.UploadedFile, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article log: %w", err)
	}
	return nil
}

func (r *ArticleLogRepository) List(ctx context.Context, limit int) ([]domain.ArticleLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, summary, nationalities, organizations, people, language, original_text, uploaded_file, created_at
FROM article_logs
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query article logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.ArticleLog
	for rows.Next() {
		var log domain.ArticleLog
		var summary, nationalities, organizations, people, language []byte

		err := rows.Scan(
			&log.ID, &summary, &nationalities, &organizations, &people, &language,
			&log.OriginalText, &log.UploadedFile, &log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan article log: %w", err)
		}
		if err := unmarshalArrays(&log, summary, nationalities, organizations, people, language); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article logs: %w", err)
	}
	return logs, nil
}

func marshalArrays(log *domain.ArticleLog) (summary, nationalities, organizations, people, language []byte, err error) {
	for _, field := range []struct {
		name string
		src  []string
		dst  *[]byte
	}{
		{"summary", log.Summary, &summary},
		{"nationalities", log.Nationalities, &nationalities},
		{"organizations", log.Organizations, &organizations},
		{"people", log.People, &people},
		{"language", log.Language, &language},
	} {
		src := field.src
		if src == nil {
			src = []string{}
		}
		*field.dst, err = json.Marshal(src)
		if err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("marshal %s: %w", field.name, err)
		}
	}
	return summary, nationalities, organizations, people, language, nil
}

func unmarshalArrays(log *domain.ArticleLog, summary, nationalities, organizations, people, language []byte) error {
	for _, field := range []struct {
		name string
		raw  []byte
		dst  *[]string
	}{
		{"summary", summary, &log.Summary},
		{"nationalities", nationalities, &log.Nationalities},
		{"organizations", organizations, &log.Organizations},
		{"people", people, &log.People},
		{"language", language, &log.Language},
	} {
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return fmt.Errorf("unmarshal %s: %w", field.name, err)
		}
	}
	return nil
}
