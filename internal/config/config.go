// engine/internal/config/config.go
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keywords are the relevance keyword tables, matched as substrings.
type Keywords struct {
	Domain    []string `yaml:"domain"`
	Seniority []string `yaml:"seniority"`
	Role      []string `yaml:"role"`
	Exclude   []string `yaml:"exclude"`
}

// Scope names the fields (title, description, company) searched per table.
type Scope struct {
	Domain    []string `yaml:"domain"`
	Seniority []string `yaml:"seniority"`
	Role      []string `yaml:"role"`
	Exclude   []string `yaml:"exclude"`
}

type Company struct {
	Name       string   `yaml:"name"`
	Domain     string   `yaml:"domain"`
	CareerURLs []string `yaml:"career_urls"`
	HRPatterns []string `yaml:"hr_patterns"`
}

// Board is a company on a hosted ATS (greenhouse/lever).
type Board struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Run struct {
		SourceTimeoutSeconds int     `yaml:"source_timeout_seconds"`
		RequestsPerSecond    float64 `yaml:"requests_per_second"`
		Burst                int     `yaml:"burst"`
		MaxJobsPerSource     int     `yaml:"max_jobs_per_source"`
		SyntheticFallback    bool    `yaml:"synthetic_fallback"`
	} `yaml:"run"`

	Server struct {
		Addr            string `yaml:"addr"`
		IntervalMinutes int    `yaml:"interval_minutes"` // 0 = only on POST /run
	} `yaml:"server"`

	Filters struct {
		Policy         string `yaml:"policy"` // domain_and_role | all
		MinTitleLength int    `yaml:"min_title_length"`
		MaxTitleLength int    `yaml:"max_title_length"`
		Scope          Scope  `yaml:"scope"`
	} `yaml:"filters"`

	Keywords  Keywords  `yaml:"keywords"`
	Companies []Company `yaml:"companies"`

	Sources struct {
		Careers struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"careers"`
		Greenhouse struct {
			Enabled   bool    `yaml:"enabled"`
			Companies []Board `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Enabled   bool    `yaml:"enabled"`
			Companies []Board `yaml:"companies"`
		} `yaml:"lever"`
	} `yaml:"sources"`

	Email struct {
		Enabled          bool     `yaml:"enabled"`
		IMAPHost         string   `yaml:"imap_host"`
		IMAPPort         int      `yaml:"imap_port"`
		Username         string   `yaml:"username"`
		Mailbox          string   `yaml:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any"`
		MaxMessages      int      `yaml:"max_messages"`
		MarkSeen         bool     `yaml:"mark_seen"`
	} `yaml:"email"`

	Outreach struct {
		FromName    string `yaml:"from_name"`
		FromAddress string `yaml:"from_address"`
		Subject     string `yaml:"subject"`
		Body        string `yaml:"body"`
		DraftsDir   string `yaml:"drafts_dir"`
	} `yaml:"outreach"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	return cfg, nil
}

// ApplyEnv overrides file values from the environment (.env included,
// once the caller ran godotenv).
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("FINTECHJOBS_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
}

func ApplyDefaults(cfg *Config) {
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "."
	}
	if cfg.Run.SourceTimeoutSeconds == 0 {
		cfg.Run.SourceTimeoutSeconds = 120
	}
	if cfg.Run.RequestsPerSecond == 0 {
		cfg.Run.RequestsPerSecond = 0.5
	}
	if cfg.Run.Burst == 0 {
		cfg.Run.Burst = 1
	}
	if cfg.Run.MaxJobsPerSource == 0 {
		cfg.Run.MaxJobsPerSource = 100
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:38471"
	}
	if cfg.Filters.Policy == "" {
		cfg.Filters.Policy = "domain_and_role"
	}
	s := &cfg.Filters.Scope
	if len(s.Domain) == 0 {
		s.Domain = []string{"title", "description", "company"}
	}
	if len(s.Seniority) == 0 {
		s.Seniority = []string{"title", "description"}
	}
	if len(s.Role) == 0 {
		s.Role = []string{"title", "description"}
	}
	if len(s.Exclude) == 0 {
		s.Exclude = []string{"title", "description"}
	}
	if cfg.Email.Mailbox == "" {
		cfg.Email.Mailbox = "INBOX"
	}
	if cfg.Email.IMAPPort == 0 {
		cfg.Email.IMAPPort = 993
	}
	if cfg.Email.MaxMessages == 0 {
		cfg.Email.MaxMessages = 200
	}
	if cfg.Outreach.DraftsDir == "" {
		cfg.Outreach.DraftsDir = "drafts"
	}
}

// CompanyByName finds a configured company, case-insensitively.
func (c Config) CompanyByName(name string) (Company, bool) {
	name = strings.TrimSpace(name)
	for _, co := range c.Companies {
		if strings.EqualFold(strings.TrimSpace(co.Name), name) {
			return co, true
		}
	}
	return Company{}, false
}

// CompanyByDomain matches an email/host domain against company domains,
// subdomains included.
func (c Config) CompanyByDomain(host string) (Company, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return Company{}, false
	}
	for _, co := range c.Companies {
		d := strings.ToLower(strings.TrimSpace(co.Domain))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return co, true
		}
	}
	return Company{}, false
}
