package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"
	"github.com/mdpress/mdpress/internal/domain"
	internal_errors "github.com/mdpress/mdpress/internal/errors"
)

// SaveBlog persists a new post.
func (s *Storage) SaveBlog(post domain.BlogPost) error {
	_, err := s.db.Exec(`
        INSERT INTO blogs(id, title, content, author_id, created_at, updated_at)
        VALUES($1, $2, $3, $4, $5, $6)`,
		post.Id, post.Title, post.Content, post.AuthorId, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert blog post: %w", err)
	}
	return nil
}

// Blog fetches a single post by id.
func (s *Storage) Blog(id string) (domain.BlogPost, error) {
	return s.blog(s.db, id)
}

// Blogs returns one page of posts ordered by creation time descending,
// plus the total count matching the filter.
func (s *Storage) Blogs(filter domain.BlogFilter, page, limit int) ([]domain.BlogPost, int, error) {
	offset := (page - 1) * limit

	rows, err := s.db.Query(`
        SELECT id, title, content, author_id, (created_at at time zone 'utc'), (updated_at at time zone 'utc')
        FROM blogs
        WHERE ($1 = '' OR author_id = $1)
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`,
		filter.AuthorId, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query blog posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.BlogPost{}
	for rows.Next() {
		var post domain.BlogPost
		if err := rows.Scan(&post.Id, &post.Title, &post.Content, &post.AuthorId, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate blog posts: %w", err)
	}

	var total int
	err = s.db.QueryRow("SELECT count(*) FROM blogs WHERE ($1 = '' OR author_id = $1)", filter.AuthorId).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count blog posts: %w", err)
	}

	return posts, total, nil
}

// Authors batch-resolves author summaries for the given user ids.
func (s *Storage) Authors(ids []string) (map[string]domain.AuthorSummary, error) {
	authors := make(map[string]domain.AuthorSummary, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	rows, err := s.db.Query("SELECT id, username FROM users WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.AuthorSummary
		if err := rows.Scan(&a.Id, &a.Username); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors[a.Id] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate authors: %w", err)
	}
	return authors, nil
}

// UpdateBlog applies a partial patch and bumps updated_at, returning the
// updated row. COALESCE keeps omitted fields untouched.
func (s *Storage) UpdateBlog(id string, patch domain.BlogPatch, updatedAt time.Time) (domain.BlogPost, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var post domain.BlogPost
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRow(`
            UPDATE blogs
            SET title = COALESCE($2, title), content = COALESCE($3, content), updated_at = $4
            WHERE id = $1
            RETURNING id, title, content, author_id, (created_at at time zone 'utc'), (updated_at at time zone 'utc')`,
			id, patch.Title, patch.Content, updatedAt,
		).Scan(&post.Id, &post.Title, &post.Content, &post.AuthorId, &post.CreatedAt, &post.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BlogPost{}, &internal_errors.ErrorWithStatusCode{Message: "Blog post not found", StatusCode: http.StatusNotFound}
		}
		return domain.BlogPost{}, fmt.Errorf("failed to update blog post: %w", err)
	}
	return post, nil
}

// DeleteBlog removes a post.
func (s *Storage) DeleteBlog(id string) error {
	result, err := s.db.Exec("DELETE FROM blogs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for blog deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Blog post not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) blog(q Querier, id string) (domain.BlogPost, error) {
	var post domain.BlogPost
	err := q.QueryRow(`
        SELECT id, title, content, author_id, (created_at at time zone 'utc'), (updated_at at time zone 'utc')
        FROM blogs WHERE id = $1`, id,
	).Scan(&post.Id, &post.Title, &post.Content, &post.AuthorId, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BlogPost{}, &internal_errors.ErrorWithStatusCode{Message: "Blog post not found", StatusCode: http.StatusNotFound}
		}
		return domain.BlogPost{}, fmt.Errorf("failed to query blog post: %w", err)
	}
	return post, nil
}
