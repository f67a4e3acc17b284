package application

import "github.com/oksasatya/blogilista/internal/domain/entity"

type Stats struct {
	TotalLikes int
	Favourite  *entity.Blog
}

// TotalLikes sums likes over blogs.
func TotalLikes(blogs []entity.Blog) int {
	sum := 0
	for _, b := range blogs {
		sum += b.Likes
	}
	return sum
}

// FavouriteBlog returns the first blog with the most likes. ok is false for no blogs.
func FavouriteBlog(blogs []entity.Blog) (fav entity.Blog, ok bool) {
	if len(blogs) == 0 {
		return entity.Blog{}, false
	}
	best := 0
	for i, b := range blogs {
		if b.Likes > blogs[best].Likes {
			best = i
		}
	}
	return blogs[best], true
}
