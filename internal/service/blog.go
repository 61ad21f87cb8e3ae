package service

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mdpress/mdpress/internal/config"
	"github.com/mdpress/mdpress/internal/domain"
	"github.com/mdpress/mdpress/internal/errors"
)

type BlogService interface {
	List(filter domain.BlogFilter, page, limit int) (domain.BlogPage, error)
	GetById(id string) (domain.BlogPost, error)
	Create(title, content, authorId string) (domain.BlogPost, error)
	Update(id string, patch domain.BlogPatch, requesterId string) (domain.BlogPost, error)
	Delete(id, requesterId string) error
}

type Blog struct {
	storage BlogStorage
	cfg     *config.Config
}

type BlogStorage interface {
	SaveBlog(post domain.BlogPost) error
	Blog(id string) (domain.BlogPost, error)
	Blogs(filter domain.BlogFilter, page, limit int) ([]domain.BlogPost, int, error)
	Authors(ids []string) (map[string]domain.AuthorSummary, error)
	UpdateBlog(id string, patch domain.BlogPatch, updatedAt time.Time) (domain.BlogPost, error)
	DeleteBlog(id string) error
}

func NewBlog(storage BlogStorage, cfg *config.Config) *Blog {
	return &Blog{storage, cfg}
}

// List returns one page of posts ordered by creation time descending,
// each carrying a denormalized author summary resolved with a single
// batch lookup over the page's distinct author ids.
func (b *Blog) List(filter domain.BlogFilter, page, limit int) (domain.BlogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = b.cfg.Public.DefaultPageLimit
	}

	posts, total, err := b.storage.Blogs(filter, page, limit)
	if err != nil {
		return domain.BlogPage{}, err
	}

	if err := b.attachAuthors(posts); err != nil {
		return domain.BlogPage{}, err
	}

	totalPages := (total + limit - 1) / limit
	return domain.BlogPage{
		Posts: posts,
		Pagination: domain.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

func (b *Blog) GetById(id string) (domain.BlogPost, error) {
	post, err := b.storage.Blog(id)
	if err != nil {
		return domain.BlogPost{}, err
	}

	authors, err := b.storage.Authors([]string{post.AuthorId})
	if err != nil {
		return domain.BlogPost{}, err
	}
	author, ok := authors[post.AuthorId]
	if !ok {
		return domain.BlogPost{}, &errors.ErrorWithStatusCode{Message: "Author not found", StatusCode: http.StatusNotFound}
	}
	post.Author = &author

	return post, nil
}

func (b *Blog) Create(title, content, authorId string) (domain.BlogPost, error) {
	if title == "" || content == "" {
		return domain.BlogPost{}, &errors.ErrorWithStatusCode{Message: "Title and content are required", StatusCode: http.StatusBadRequest}
	}

	now := time.Now().UTC()
	post := domain.BlogPost{
		Id:        uuid.NewString(),
		Title:     title,
		Content:   content,
		AuthorId:  authorId,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.storage.SaveBlog(post); err != nil {
		return domain.BlogPost{}, err
	}
	return post, nil
}

func (b *Blog) Update(id string, patch domain.BlogPatch, requesterId string) (domain.BlogPost, error) {
	post, err := b.storage.Blog(id)
	if err != nil {
		return domain.BlogPost{}, err
	}
	if post.AuthorId != requesterId {
		return domain.BlogPost{}, &errors.ErrorWithStatusCode{Message: "You can only edit your own posts", StatusCode: http.StatusForbidden}
	}

	if patch.Empty() {
		return post, nil
	}

	return b.storage.UpdateBlog(id, patch, time.Now().UTC())
}

func (b *Blog) Delete(id, requesterId string) error {
	post, err := b.storage.Blog(id)
	if err != nil {
		return err
	}
	if post.AuthorId != requesterId {
		return &errors.ErrorWithStatusCode{Message: "You can only delete your own posts", StatusCode: http.StatusForbidden}
	}

	return b.storage.DeleteBlog(id)
}

// attachAuthors enriches posts in place with author summaries.
func (b *Blog) attachAuthors(posts []domain.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.AuthorId]; ok {
			continue
		}
		seen[post.AuthorId] = struct{}{}
		ids = append(ids, post.AuthorId)
	}

	authors, err := b.storage.Authors(ids)
	if err != nil {
		return err
	}

	for i := range posts {
		if author, ok := authors[posts[i].AuthorId]; ok {
			posts[i].Author = &author
		}
	}
	return nil
}
