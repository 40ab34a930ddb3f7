package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PolicyConfig describes the module catalog and the default permission
// grants for the reserved system roles. It is loaded from policy.yml and
// hot-reloaded when the file changes; the seeded catalog and role defaults
// are derived from it at startup.
type PolicyConfig struct {
	Modules      []PolicyModule      `mapstructure:"modules"`
	SystemRoles  []PolicyRole        `mapstructure:"systemRoles"`
	ExtraActions map[string][]string `mapstructure:"extraActions"`
}

// PolicyModule is a catalog entry for an optional feature area.
type PolicyModule struct {
	Key     string   `mapstructure:"key"`
	Name    string   `mapstructure:"name"`
	Actions []string `mapstructure:"actions"`
}

// PolicyRole is a reserved role with its default permission slugs.
type PolicyRole struct {
	Slug        string   `mapstructure:"slug"`
	Name        string   `mapstructure:"name"`
	Level       int      `mapstructure:"level"`
	Permissions []string `mapstructure:"permissions"`
}

// DefaultPolicyConfig returns the built-in module catalog and role defaults
// used when no policy.yml is present.
func DefaultPolicyConfig() PolicyConfig {
	crud := func(object string, actions ...string) []string {
		out := make([]string, 0, len(actions))
		for _, a := range actions {
			out = append(out, object+"."+a)
		}
		return out
	}

	posActions := append(crud("sale", "view", "create", "update", "delete", "cancel"),
		append(crud("payment", "view", "create", "update", "refund", "reinstate"), "pos.access")...)
	stockActions := crud("stock", "view", "adjust", "transfer")
	hrActions := append(crud("worker", "view", "create", "update", "delete"),
		crud("salary", "view", "create", "update", "delete")...)
	purchasingActions := crud("purchase", "view", "create", "update", "approve", "delete")
	expensesActions := crud("expense", "view", "create", "update", "delete")
	tasksActions := crud("task", "view", "create", "update", "complete", "delete")

	all := make([]string, 0, 64)
	all = append(all, ProjectActions...)
	all = append(all, posActions...)
	all = append(all, stockActions...)
	all = append(all, hrActions...)
	all = append(all, purchasingActions...)
	all = append(all, expensesActions...)
	all = append(all, tasksActions...)

	viewOnly := make([]string, 0, len(all))
	for _, slug := range all {
		if strings.HasSuffix(slug, ".view") || slug == "pos.access" {
			viewOnly = append(viewOnly, slug)
		}
	}

	memberGrants := make([]string, 0, len(all))
	for _, slug := range all {
		switch {
		case strings.HasSuffix(slug, ".delete"),
			strings.HasSuffix(slug, ".approve"),
			strings.HasPrefix(slug, "projects."):
			continue
		default:
			memberGrants = append(memberGrants, slug)
		}
	}

	return PolicyConfig{
		Modules: []PolicyModule{
			{Key: "pos", Name: "Point of Sale", Actions: posActions},
			{Key: "stock", Name: "Inventory", Actions: stockActions},
			{Key: "hr", Name: "HR & Payroll", Actions: hrActions},
			{Key: "purchasing", Name: "Purchasing", Actions: purchasingActions},
			{Key: "expenses", Name: "Expenses", Actions: expensesActions},
			{Key: "tasks", Name: "Task Tracking", Actions: tasksActions},
		},
		SystemRoles: []PolicyRole{
			{Slug: "owner", Name: "Owner", Level: 100, Permissions: all},
			{Slug: "admin", Name: "Admin", Level: 80, Permissions: all},
			{Slug: "manager", Name: "Manager", Level: 60, Permissions: memberGrants},
			{Slug: "member", Name: "Member", Level: 40, Permissions: memberGrants},
			{Slug: "viewer", Name: "Viewer", Level: 20, Permissions: viewOnly},
		},
	}
}

// ProjectActions are project-scoped administrative slugs that are not gated
// behind any optional module.
var ProjectActions = []string{
	"projects.view",
	"projects.update",
	"projects.members",
	"projects.modules",
}

// PolicyHolder holds the active PolicyConfig behind an atomic value so a
// file reload never races a reader.
type PolicyHolder struct {
	current atomic.Value
}

// NewPolicyHolder loads policy.yml (falling back to built-in defaults) and
// watches it for changes.
func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("policy")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/crewbase/config")
	v.AddConfigPath("/etc/crewbase")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CREWBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PolicyHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultPolicyConfig())
		return holder, nil
	}

	cfg, err := unmarshalPolicy(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := unmarshalPolicy(v)
		if err != nil {
			log.Printf("[policy-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[policy-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPolicyHolder wraps a fixed config, used by tests and seeding.
func NewStaticPolicyHolder(cfg PolicyConfig) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(cfg)
	return holder
}

// Get returns the active policy config.
func (h *PolicyHolder) Get() PolicyConfig {
	return h.current.Load().(PolicyConfig)
}

func unmarshalPolicy(v *viper.Viper) (PolicyConfig, error) {
	var cfg PolicyConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return PolicyConfig{}, err
	}
	if err := validatePolicyConfig(cfg); err != nil {
		return PolicyConfig{}, err
	}
	return cfg, nil
}

func validatePolicyConfig(cfg PolicyConfig) error {
	if len(cfg.Modules) == 0 {
		return errors.New("policy: modules cannot be empty")
	}
	if len(cfg.SystemRoles) == 0 {
		return errors.New("policy: systemRoles cannot be empty")
	}
	seen := map[string]bool{}
	for _, m := range cfg.Modules {
		if strings.TrimSpace(m.Key) == "" {
			return errors.New("policy: module key cannot be empty")
		}
		if seen[m.Key] {
			return errors.New("policy: duplicate module key " + m.Key)
		}
		seen[m.Key] = true
	}
	return nil
}
