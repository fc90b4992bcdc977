package collections

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/communityhub/internal/app/system/csvutil"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"go.uber.org/zap"
)

const exportDate = "2006-01-02"

// columns describes one collection's CSV export.
type columns[T any] struct {
	header []string
	row    func(T) []string
}

var userColumns = columns[models.User]{
	header: []string{"ID", "Nom", "Email", "Rôle", "Statut", "Publications", "Commentaires", "Inscription", "Dernière activité"},
	row: func(u models.User) []string {
		return []string{string(u.ID), u.Name, u.Email, u.Role.Label(), u.Status.Label(),
			strconv.Itoa(u.Posts), strconv.Itoa(u.Comments), day(u.JoinDate), u.LastActive}
	},
}

var postColumns = columns[models.Post]{
	header: []string{"ID", "Titre", "Auteur", "Statut", "Tags", "Vues", "Commentaires", "J'aime", "Date"},
	row: func(p models.Post) []string {
		return []string{string(p.ID), p.Title, p.Author.Name, p.Status.Label(), strings.Join(p.Tags, ", "),
			strconv.Itoa(p.Views), strconv.Itoa(p.Comments), strconv.Itoa(p.Likes), day(p.CreatedAt)}
	},
}

var commentColumns = columns[models.Comment]{
	header: []string{"ID", "Contenu", "Auteur", "Publication", "Statut", "J'aime", "Date"},
	row: func(c models.Comment) []string {
		return []string{string(c.ID), c.Content, c.Author.Name, c.PostTitle, c.Status.Label(),
			strconv.Itoa(c.Likes), day(c.CreatedAt)}
	},
}

var tagColumns = columns[models.Tag]{
	header: []string{"ID", "Nom", "Couleur", "Publications"},
	row: func(t models.Tag) []string {
		return []string{string(t.ID), t.Name, t.Color, strconv.Itoa(t.PostCount)}
	},
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDate)
}

// serveExport handles GET /{kind}/export.csv: the rows the current search
// matches, as a CSV attachment.
func (res *resource[T]) serveExport(w http.ResponseWriter, r *http.Request) {
	st := res.store.Snapshot()
	rows := make([][]string, 0, len(st.Items))
	for _, item := range st.Items {
		rows = append(rows, res.columns.row(item))
	}

	name := csvutil.Filename(string(res.kind), time.Now().Format(exportDate))
	w.Header().Set("Content-Type", csvutil.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	n, err := csvutil.Write(w, res.columns.header, rows)
	if err != nil {
		res.h.Log.Warn("export failed", zap.String("kind", string(res.kind)), zap.Error(err))
		return
	}
	if n < len(rows) {
		res.h.Log.Warn("export truncated", zap.String("kind", string(res.kind)), zap.Int("rows", len(rows)), zap.Int("written", n))
	}
}
