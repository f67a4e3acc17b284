package handlers

import (
	"github.com/oksasatya/blogilista/internal/application"
	"github.com/oksasatya/blogilista/internal/domain/entity"
)

type ownerView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type blogView struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Author string     `json:"author"`
	URL    string     `json:"url"`
	Likes  int        `json:"likes"`
	User   *ownerView `json:"user"`
}

// userBlogView is a blog listed under its owner, so it carries no owner itself.
type userBlogView struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
}

type userView struct {
	Username string         `json:"username"`
	Name     string         `json:"name"`
	Adult    bool           `json:"adult"`
	Blogs    []userBlogView `json:"blogs"`
	ID       string         `json:"id"`
}

func toBlogView(b application.BlogWithOwner) blogView {
	v := blogView{
		ID:     b.Blog.ID,
		Title:  b.Blog.Title,
		Author: b.Blog.Author,
		URL:    b.Blog.URL,
		Likes:  b.Blog.Likes,
	}
	if b.Owner != nil {
		v.User = &ownerView{ID: b.Owner.ID, Username: b.Owner.Username, Name: b.Owner.Name}
	}
	return v
}

func toBlogViews(in []application.BlogWithOwner) []blogView {
	out := make([]blogView, 0, len(in))
	for _, b := range in {
		out = append(out, toBlogView(b))
	}
	return out
}

func toUserView(u entity.User, blogs []entity.Blog) userView {
	v := userView{
		Username: u.Username,
		Name:     u.Name,
		Adult:    u.Adult,
		Blogs:    make([]userBlogView, 0, len(blogs)),
		ID:       u.ID,
	}
	for _, b := range blogs {
		v.Blogs = append(v.Blogs, userBlogView{ID: b.ID, Title: b.Title, Author: b.Author, URL: b.URL, Likes: b.Likes})
	}
	return v
}
