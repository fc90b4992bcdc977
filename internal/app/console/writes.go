package console

import (
	"context"

	"github.com/dalemusser/communityhub/internal/app/system/inputval"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

// CreateUser validates in and adds a user with the next free identifier.
// Fields the form does not collect start at their zero value, with the
// join date set to now.
func (c *Console) CreateUser(ctx context.Context, in inputval.UserInput) (models.User, error) {
	in, err := inputval.ValidateUser(in)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:         nextID(c.users, userKey),
		Name:       in.Name,
		Email:      in.Email,
		Role:       models.Role(in.Role),
		Status:     models.UserStatus(in.Status),
		JoinDate:   c.now(),
		LastActive: "à l'instant",
	}
	return c.userEdits.Create(ctx, u)
}

// CreateTag validates in and adds a tag with no posts.
func (c *Console) CreateTag(ctx context.Context, in inputval.TagInput) (models.Tag, error) {
	in, err := inputval.ValidateTag(in)
	if err != nil {
		return models.Tag{}, err
	}
	t := models.Tag{
		ID:    nextID(c.tags, tagKey),
		Name:  in.Name,
		Color: in.Color,
	}
	return c.tagEdits.Create(ctx, t)
}

// EditUser validates in and applies it to user id.
func (c *Console) EditUser(ctx context.Context, id models.ID, in inputval.UserInput) (models.User, error) {
	in, err := inputval.ValidateUser(in)
	if err != nil {
		return models.User{}, err
	}
	return c.userEdits.Edit(ctx, id, func(u models.User) (models.User, error) {
		u.Name = in.Name
		u.Email = in.Email
		u.Role = models.Role(in.Role)
		u.Status = models.UserStatus(in.Status)
		return u, nil
	})
}

// EditPost applies the non-nil fields of in to post id.
func (c *Console) EditPost(ctx context.Context, id models.ID, in inputval.PostInput) (models.Post, error) {
	in, err := inputval.ValidatePost(in)
	if err != nil {
		return models.Post{}, err
	}
	return c.postEdits.Edit(ctx, id, func(p models.Post) (models.Post, error) {
		if in.Title != nil {
			p.Title = *in.Title
		}
		if in.Content != nil {
			p.Content = *in.Content
		}
		if in.Status != nil {
			p.Status = models.ModerationStatus(*in.Status)
		}
		return p, nil
	})
}

// EditComment replaces the content of comment id and writes it through to
// the community API.
func (c *Console) EditComment(ctx context.Context, id models.ID, in inputval.CommentInput) (models.Comment, error) {
	in, err := inputval.ValidateComment(in)
	if err != nil {
		return models.Comment{}, err
	}
	return c.commentEdits.Edit(ctx, id, func(cm models.Comment) (models.Comment, error) {
		cm.Content = in.Content
		return cm, nil
	})
}

// EditTag validates in and applies it to tag id. The post count is kept.
func (c *Console) EditTag(ctx context.Context, id models.ID, in inputval.TagInput) (models.Tag, error) {
	in, err := inputval.ValidateTag(in)
	if err != nil {
		return models.Tag{}, err
	}
	return c.tagEdits.Edit(ctx, id, func(t models.Tag) (models.Tag, error) {
		t.Name = in.Name
		t.Color = in.Color
		return t, nil
	})
}
