// Package model contains the content records shared across packages. Records
// are plain values read from the data source; the site never mutates them.
package model

import (
	"time"
)

// Collections served by the data source.
const (
	CollectionProjects           = "projects"
	CollectionTeamMembers        = "team_members"
	CollectionBlogPosts          = "blog_posts"
	CollectionContactSubmissions = "contact_submissions"
)

// ProjectStatus describes where a project is in its lifecycle. The set is
// open: unknown statuses are rendered with a neutral badge.
type ProjectStatus string

const (
	StatusCompleted ProjectStatus = "completed"
	StatusOngoing   ProjectStatus = "ongoing"
	StatusConcept   ProjectStatus = "concept"
)

// Project is one portfolio entry.
type Project struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Location      string        `json:"location"`
	Year          int           `json:"year"`
	Area          string        `json:"area"`
	Status        ProjectStatus `json:"status"`
	FeaturedImage string        `json:"featured_image"`
	Images        []string      `json:"images"`
	IsFeatured    bool          `json:"is_featured"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (p Project) RecordID() string       { return p.ID }
func (p Project) RecordCategory() string { return p.Category }

// TeamMember is one person on the team page. Members are not categorised.
type TeamMember struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Bio           string    `json:"bio"`
	Photo         string    `json:"photo"`
	Email         string    `json:"email"`
	LinkedIn      string    `json:"linkedin"`
	OrderPosition int       `json:"order_position"`
	CreatedAt     time.Time `json:"created_at"`
}

func (m TeamMember) RecordID() string       { return m.ID }
func (m TeamMember) RecordCategory() string { return "" }

// BlogPost is an article. Author is filled by expanding AuthorID against the
// team_members collection and is nil when the post has no author.
type BlogPost struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Excerpt       string      `json:"excerpt"`
	Content       string      `json:"content"`
	Category      string      `json:"category"`
	FeaturedImage string      `json:"featured_image"`
	AuthorID      string      `json:"author_id"`
	Published     bool        `json:"published"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Author        *TeamMember `json:"author,omitempty"`
}

func (b BlogPost) RecordID() string       { return b.ID }
func (b BlogPost) RecordCategory() string { return b.Category }

// ContactSubmission is a lead captured by the contact form.
type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Row returns the submission as column values for the submission sink.
func (c ContactSubmission) Row() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"subject":    c.Subject,
		"message":    c.Message,
		"created_at": c.CreatedAt,
	}
}
