package content

import (
	"context"
	"database/sql"

	"cattlesense/internal/db"
)

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateTicket(ctx context.Context, t *Ticket) error {
	if t.Status == "" {
		t.Status = TicketOpen
	}
	return s.db.QueryRowContext(ctx, `
		INSERT INTO support_tickets (user_id, subject, message, status)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.Subject, t.Message, t.Status).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (s *PostgresStore) ListTickets(ctx context.Context) ([]Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(user_id::text, ''), subject, message, status,
		       created_at, updated_at
		FROM support_tickets
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *PostgresStore) UpdateTicketStatus(ctx context.Context, id string, status TicketStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE support_tickets
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) CreatePost(ctx context.Context, p *Post) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (title, author, body, published)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Author, p.Body, p.Published).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PostgresStore) GetPost(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, body, published, created_at, updated_at
		FROM blog_posts
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Author, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, body, published, created_at, updated_at
		FROM blog_posts
		WHERE published OR NOT $1
		ORDER BY created_at DESC
	`, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.Body, &p.Published,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *PostgresStore) UpdatePost(ctx context.Context, p *Post) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE blog_posts
		SET title = $2, author = $3, body = $4, published = $5, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Title, p.Author, p.Body, p.Published)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) CreateJob(ctx context.Context, j *Job) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO job_postings (title, location, description, is_open)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, j.Title, j.Location, j.Description, j.Open).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

func (s *PostgresStore) ListJobs(ctx context.Context, openOnly bool) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, location, description, is_open, created_at, updated_at
		FROM job_postings
		WHERE is_open OR NOT $1
		ORDER BY created_at DESC
	`, openOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Location, &j.Description, &j.Open,
			&j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) UpdateJob(ctx context.Context, j *Job) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE job_postings
		SET title = $2, location = $3, description = $4, is_open = $5, updated_at = NOW()
		WHERE id = $1
	`, j.ID, j.Title, j.Location, j.Description, j.Open)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
