package inputval

import (
	"errors"
	"testing"
)

func strp(s string) *string { return &s }

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name      string
		in        UserInput
		wantField string
		wantMsg   string
	}{
		{
			name: "valid",
			in:   UserInput{Name: "Fatima El Alami", Email: "fatima@attijari.com", Role: "moderator", Status: "active"},
		},
		{
			name: "normalizes before validating",
			in:   UserInput{Name: "  Karim   Benali ", Email: " KARIM@Attijari.com ", Role: "Administrator", Status: "ACTIVE"},
		},
		{
			name:      "name too short",
			in:        UserInput{Name: "Al", Email: "al@attijari.com", Role: "member", Status: "active"},
			wantField: "name",
			wantMsg:   "Le nom doit contenir au moins 3 caractères",
		},
		{
			name:      "bad email",
			in:        UserInput{Name: "Youssef", Email: "youssef-at-attijari", Role: "member", Status: "active"},
			wantField: "email",
			wantMsg:   "Adresse email invalide",
		},
		{
			name:      "missing role",
			in:        UserInput{Name: "Youssef", Email: "y@attijari.com", Status: "active"},
			wantField: "role",
			wantMsg:   "Veuillez sélectionner un rôle",
		},
		{
			name:      "unknown role",
			in:        UserInput{Name: "Youssef", Email: "y@attijari.com", Role: "superuser", Status: "active"},
			wantField: "role",
			wantMsg:   "Veuillez sélectionner un rôle",
		},
		{
			name:      "unknown status",
			in:        UserInput{Name: "Youssef", Email: "y@attijari.com", Role: "member", Status: "banned"},
			wantField: "status",
			wantMsg:   "Veuillez sélectionner un statut",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateUser(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateUser() error = %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ValidateUser() error = %v, want *ValidationError", err)
			}
			if got := ve.Field(tt.wantField); got != tt.wantMsg {
				t.Errorf("Field(%q) = %q, want %q", tt.wantField, got, tt.wantMsg)
			}
		})
	}
}

func TestValidateUser_Normalized(t *testing.T) {
	out, err := ValidateUser(UserInput{Name: "  Karim   Benali ", Email: " KARIM@Attijari.com ", Role: "Moderator", Status: "Suspended"})
	if err != nil {
		t.Fatalf("ValidateUser() error = %v", err)
	}
	want := UserInput{Name: "Karim Benali", Email: "karim@attijari.com", Role: "moderator", Status: "suspended"}
	if out != want {
		t.Errorf("ValidateUser() = %+v, want %+v", out, want)
	}
}

func TestValidateComment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain", "  Merci pour l'info  ", "Merci pour l'info", false},
		{"strips markup", "<b>Bien</b> vu", "Bien vu", false},
		{"blank", "   ", "", true},
		{"only markup", "<script>x</script>", "", true},
		{"encoded markup", "&lt;img src=x onerror=alert(1)&gt;", "", true},
		{"encoded markup around text", "&lt;b&gt;Bien&lt;/b&gt; vu", "Bien vu", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ValidateComment(CommentInput{Content: tt.content})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateComment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out.Content != tt.want {
				t.Errorf("Content = %q, want %q", out.Content, tt.want)
			}
			if tt.wantErr && !IsValidationError(err) {
				t.Errorf("error %v is not a ValidationError", err)
			}
		})
	}
}

func TestValidateTag(t *testing.T) {
	tests := []struct {
		name      string
		in        TagInput
		wantColor string
		wantErr   bool
	}{
		{"palette colour", TagInput{Name: "Finance", Color: "#3b82f6"}, "#3B82F6", false},
		{"default colour", TagInput{Name: "Épargne"}, "#F97316", false},
		{"off palette", TagInput{Name: "Finance", Color: "#123456"}, "", true},
		{"blank name", TagInput{Name: "  ", Color: "#3B82F6"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ValidateTag(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTag() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out.Color != tt.wantColor {
				t.Errorf("Color = %q, want %q", out.Color, tt.wantColor)
			}
		})
	}
}

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name    string
		in      PostInput
		wantErr bool
	}{
		{"empty patch", PostInput{}, false},
		{"status only", PostInput{Status: strp("Flagged")}, false},
		{"title and content", PostInput{Title: strp("Nouveau titre"), Content: strp("<p>Texte</p>")}, false},
		{"bad status", PostInput{Status: strp("pending")}, true},
		{"blank title", PostInput{Title: strp("   ")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePost(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePost() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `json:"name" validate:"required,max=10" label:"Nom complet"`
		Email string `json:"email" validate:"required,email" label:"Email"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{"valid input", TestInput{Name: "Amine", Email: "amine@example.com"}, false, ""},
		{"missing name", TestInput{Email: "amine@example.com"}, true, "Nom complet est obligatoire."},
		{"name too long", TestInput{Name: "UnNomBeaucoupTropLong", Email: "amine@example.com"}, true, "Nom complet doit contenir au plus 10 caractères."},
		{"invalid email", TestInput{Name: "Amine", Email: "not-an-email"}, true, "Adresse email invalide"},
		{"missing both", TestInput{}, true, "Nom complet est obligatoire."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
		if r.Err() != nil {
			t.Errorf("Err() = %v, want nil", r.Err())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
		if want := "Error 1; Error 2"; r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
		if want := "validation failed: Error 1; Error 2"; r.Err().Error() != want {
			t.Errorf("Err() = %q, want %q", r.Err().Error(), want)
		}
	})
}
