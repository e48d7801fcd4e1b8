package models

import "time"

// Post represents a row in the PostgreSQL posts table. Author is a
// denormalized copy of the owner's email taken at creation time.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	ImageURL  *string   `json:"image_url"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePostRequest is the JSON body for POST /api/posts when no image file
// is attached (multipart form fields otherwise).
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest is the JSON body for PUT /api/posts/{id}.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatedPost echoes the stored fields of a newly created post.
type CreatedPost struct {
	Message  string  `json:"message"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Author   string  `json:"author"`
	ImageURL *string `json:"image_url"`
}
