package contentplan

import (
	"strings"

	"github.com/teamplan/planboard/internal/roles"
)

// Bucket is one of the three content-plan categories.
type Bucket string

const (
	BucketEvents    Bucket = "events"
	BucketInstagram Bucket = "instagram"
	BucketTelegram  Bucket = "telegram"
)

// BucketConfig binds a bucket to its backing table, its typed field schema
// and the roles permitted to mutate it. Table and field names feed generic
// statement construction, so they must never come from request input.
type BucketConfig struct {
	Bucket       Bucket
	Table        string
	Fields       []FieldSpec
	allowedRoles map[roles.Role]struct{}
}

// CanManage reports whether role may create, update or delete items in this
// bucket. Read access is unrestricted and never consults this.
func (c *BucketConfig) CanManage(role roles.Role) bool {
	_, ok := c.allowedRoles[role]
	return ok
}

// IsPublication reports whether the bucket supports assets and task links.
// Events do not.
func (c *BucketConfig) IsPublication() bool {
	return c.Bucket != BucketEvents
}

// Registry is the immutable bucket lookup, built once at startup and
// injected into the service.
type Registry struct {
	byName  map[string]*BucketConfig
	ordered []*BucketConfig
}

// NewRegistry builds the standard three-bucket registry. Events are managed
// by super admins and admins; publications additionally by content managers.
func NewRegistry() *Registry {
	eventRoles := roleSet(roles.SuperAdmin, roles.Admin)
	publicationRoles := roleSet(roles.SuperAdmin, roles.Admin, roles.ContentManager)

	publicationFields := func() []FieldSpec {
		return []FieldSpec{
			{Name: "title", Kind: FieldText, Required: true},
			{Name: "description", Kind: FieldText},
			{Name: "date", Kind: FieldDate, Required: true},
			{Name: "time", Kind: FieldTime, HalfHour: true},
			{Name: "type", Kind: FieldText},
			{Name: "status", Kind: FieldText},
			{Name: "event_id", Kind: FieldEventRef, Aliases: []string{"eventId"}},
		}
	}

	configs := []*BucketConfig{
		{
			Bucket: BucketEvents,
			Table:  "events",
			Fields: []FieldSpec{
				{Name: "title", Kind: FieldText, Required: true},
				{Name: "description", Kind: FieldText},
				{Name: "date", Kind: FieldDate, Required: true},
				{Name: "time", Kind: FieldTime},
				{Name: "location", Kind: FieldText},
				{Name: "type", Kind: FieldText, Required: true},
			},
			allowedRoles: eventRoles,
		},
		{
			Bucket:       BucketInstagram,
			Table:        "content_instagram",
			Fields:       publicationFields(),
			allowedRoles: publicationRoles,
		},
		{
			Bucket:       BucketTelegram,
			Table:        "content_telegram",
			Fields:       publicationFields(),
			allowedRoles: publicationRoles,
		},
	}

	registry := &Registry{byName: make(map[string]*BucketConfig, len(configs))}
	for _, cfg := range configs {
		registry.byName[string(cfg.Bucket)] = cfg
		registry.ordered = append(registry.ordered, cfg)
	}
	return registry
}

// Lookup resolves a raw bucket identifier, case-insensitive and trimmed.
// Unknown identifiers return nil; there is no default bucket.
func (r *Registry) Lookup(raw string) *BucketConfig {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return nil
	}
	return r.byName[normalized]
}

// Buckets returns the configs in aggregation order: events, instagram,
// telegram.
func (r *Registry) Buckets() []*BucketConfig {
	return r.ordered
}

func roleSet(list ...roles.Role) map[roles.Role]struct{} {
	set := make(map[roles.Role]struct{}, len(list))
	for _, role := range list {
		set[role] = struct{}{}
	}
	return set
}
