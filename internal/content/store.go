package content

import "context"

// Store persists the admin console's collections: support tickets, blog
// posts and job postings. Listings come back newest first.
type Store interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	ListTickets(ctx context.Context) ([]Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status TicketStatus) error

	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error)
	UpdatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id string) error

	CreateJob(ctx context.Context, j *Job) error
	ListJobs(ctx context.Context, openOnly bool) ([]Job, error)
	UpdateJob(ctx context.Context, j *Job) error
	DeleteJob(ctx context.Context, id string) error
}
