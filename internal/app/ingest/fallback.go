package ingest

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

// Fallback supplies the fields a raw record does not carry.
//
// A Fallback is created once per load and asked at most once per field per
// record, so whatever it returns is fixed on the canonical entity for the
// lifetime of that snapshot. Aggregation never calls it.
type Fallback interface {
	Email(id models.ID, name string) string
	Role() models.Role
	UserStatus() models.UserStatus
	ModerationStatus() models.ModerationStatus
	JoinDate() time.Time
	LastActive() string
}

// FallbackFactory builds the Fallback for one load.
type FallbackFactory func() Fallback

// LastActiveUnknown is the deterministic last-active descriptor.
const LastActiveUnknown = "inconnu"

// lastActiveChoices are the descriptors used by the random policy.
var lastActiveChoices = []string{
	"à l'instant",
	"il y a 30min",
	"il y a 1h",
	"il y a 2h",
	"il y a 2 jours",
	"il y a 1 semaine",
}

// syntheticEmail derives first.last@domain from a display name.
func syntheticEmail(domain string, id models.ID, name string) string {
	local := normalize.Slug(name)
	if local == "" {
		local = "user." + normalize.Slug(id.String())
	}
	return local + "@" + domain
}

// Deterministic fills missing fields with fixed defaults: a name-derived
// email, Member, active, approved, zero join date, unknown last activity.
func Deterministic(domain string) FallbackFactory {
	fb := deterministic{domain: domain}
	return func() Fallback { return fb }
}

type deterministic struct{ domain string }

func (d deterministic) Email(id models.ID, name string) string {
	return syntheticEmail(d.domain, id, name)
}
func (deterministic) Role() models.Role                         { return models.RoleMember }
func (deterministic) UserStatus() models.UserStatus             { return models.UserActive }
func (deterministic) ModerationStatus() models.ModerationStatus { return models.StatusApproved }
func (deterministic) JoinDate() time.Time                       { return time.Time{} }
func (deterministic) LastActive() string                        { return LastActiveUnknown }

// Random fills missing role, status, join date and last activity with
// random values. The email is still derived from the name.
//
// A non-zero seed makes every load produce the same sequence, which keeps
// demos and tests reproducible. Zero draws a fresh seed per load.
func Random(domain string, seed int64, now func() time.Time) FallbackFactory {
	if now == nil {
		now = time.Now
	}
	return func() Fallback {
		return &random{domain: domain, faker: gofakeit.New(seed), now: now()}
	}
}

type random struct {
	domain string
	faker  *gofakeit.Faker
	now    time.Time
}

func (r *random) Email(id models.ID, name string) string {
	return syntheticEmail(r.domain, id, name)
}

func (r *random) Role() models.Role {
	return models.Roles[r.faker.Number(0, len(models.Roles)-1)]
}

func (r *random) UserStatus() models.UserStatus {
	return models.UserStatuses[r.faker.Number(0, len(models.UserStatuses)-1)]
}

func (r *random) ModerationStatus() models.ModerationStatus {
	return models.ModerationStatuses[r.faker.Number(0, len(models.ModerationStatuses)-1)]
}

// JoinDate is a day within the two years before the load.
func (r *random) JoinDate() time.Time {
	d := r.faker.DateRange(r.now.AddDate(-2, 0, 0), r.now)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *random) LastActive() string {
	return r.faker.RandomString(lastActiveChoices)
}
