package inputval

import (
	"strings"

	"github.com/dalemusser/communityhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

// IsValidEmail reports whether s is a bare addr-spec (no display name)
// with a dotted domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && engine().Var(s, "email") == nil
}

// UserInput is the create/edit user form.
type UserInput struct {
	Name   string `json:"name" validate:"min=3" label:"Nom" msg:"Le nom doit contenir au moins 3 caractères"`
	Email  string `json:"email" validate:"email" label:"Email" msg:"Adresse email invalide"`
	Role   string `json:"role" validate:"required,role" label:"Rôle" msg:"Veuillez sélectionner un rôle"`
	Status string `json:"status" validate:"required,userstatus" label:"Statut" msg:"Veuillez sélectionner un statut"`
}

// Normalized returns a copy with trimmed, canonical fields.
func (in UserInput) Normalized() UserInput {
	return UserInput{
		Name:   strings.Join(strings.Fields(in.Name), " "),
		Email:  strings.ToLower(strings.TrimSpace(in.Email)),
		Role:   strings.ToLower(strings.TrimSpace(in.Role)),
		Status: strings.ToLower(strings.TrimSpace(in.Status)),
	}
}

// ValidateUser normalizes and validates a user form.
func ValidateUser(in UserInput) (UserInput, error) {
	n := in.Normalized()
	return n, Validate(n).Err()
}

// CommentInput is the comment edit form. Only content is editable.
type CommentInput struct {
	Content string `json:"content" validate:"notblank" label:"Contenu" msg:"Le commentaire ne peut pas être vide"`
}

// ValidateComment trims and sanitizes the content and checks it is not blank.
func ValidateComment(in CommentInput) (CommentInput, error) {
	n := CommentInput{Content: htmlsanitize.PlainText(strings.TrimSpace(in.Content))}
	return n, Validate(n).Err()
}

// TagInput is the tag create/edit form.
type TagInput struct {
	Name  string `json:"name" validate:"notblank,max=40" label:"Nom du tag"`
	Color string `json:"color" validate:"omitempty,palette" label:"Couleur"`
}

// ValidateTag normalizes and validates a tag form. An empty colour takes
// the default tag colour.
func ValidateTag(in TagInput) (TagInput, error) {
	n := TagInput{
		Name:  strings.Join(strings.Fields(in.Name), " "),
		Color: strings.ToUpper(strings.TrimSpace(in.Color)),
	}
	if n.Color == "" {
		n.Color = models.DefaultTagColor
	}
	return n, Validate(n).Err()
}

// PostInput is the post moderation patch. Nil fields are left unchanged.
type PostInput struct {
	Title   *string `json:"title,omitempty" validate:"omitnil,notblank,max=200" label:"Titre"`
	Content *string `json:"content,omitempty" validate:"omitnil,notblank" label:"Contenu"`
	Status  *string `json:"status,omitempty" validate:"omitnil,modstatus" label:"Statut"`
}

// ValidatePost trims, sanitizes and validates a post patch.
func ValidatePost(in PostInput) (PostInput, error) {
	var n PostInput
	if in.Title != nil {
		s := strings.Join(strings.Fields(*in.Title), " ")
		n.Title = &s
	}
	if in.Content != nil {
		s := htmlsanitize.Sanitize(strings.TrimSpace(*in.Content))
		n.Content = &s
	}
	if in.Status != nil {
		s := strings.ToLower(strings.TrimSpace(*in.Status))
		n.Status = &s
	}
	return n, Validate(n).Err()
}
