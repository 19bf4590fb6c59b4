// Package rules loads the registry rules: supported hosts, ownership lists
// and the indexer logs location
package rules

import (
	"strings"

	"registrygate/internal/core/repourl"
	"registrygate/internal/core/tier"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/validate"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. REGISTRYGATE_LOGS_BASE_URL
const EnvPrefix = "REGISTRYGATE"

// Rules is the validated registry rule set
type Rules struct {
	SupportedHosts    repourl.Hosts `mapstructure:"supported_hosts" validate:"required,min=1,dive"`
	OfficialOwners    []string      `mapstructure:"official_owners" validate:"dive,ownerpath"`
	PartnerOwners     []string      `mapstructure:"partner_owners" validate:"dive,ownerpath"`
	RecommendedOwners []string      `mapstructure:"recommended_owners" validate:"dive,ownerpath"`
	LogsBaseURL       string        `mapstructure:"logs_base_url" validate:"required,url"`
}

// Registry returns the ownership registry used by the classifier
func (r Rules) Registry() tier.Registry {
	return tier.Registry{
		Official:    r.OfficialOwners,
		Partner:     r.PartnerOwners,
		Recommended: r.RecommendedOwners,
	}
}

// Defaults returns the built-in Library Manager rules
func Defaults() Rules {
	return Rules{
		SupportedHosts: repourl.Hosts{
			{Host: "bitbucket.org", Depth: 2},
			{Host: "git.antares.id"},
			{Host: "github.com", Depth: 2},
			{Host: "gitlab.com"},
		},
		OfficialOwners: []string{
			"github.com/arduino",
			"github.com/arduino-libraries",
			"github.com/bcmi-labs",
			"github.com/vidor-libraries",
		},
		PartnerOwners: []string{
			"github.com/Azure",
			"github.com/ms-iot",
			"github.com/ameltech",
		},
		RecommendedOwners: []string{
			"github.com/adafruit",
		},
		LogsBaseURL: "http://downloads.arduino.cc/libraries/logs/",
	}
}

// Load reads the rules file at path (YAML, JSON or TOML by extension) over
// the defaults. An empty path yields the defaults plus env overrides
func Load(path string) (Rules, error) {
	v := viper.New()
	setDefaults(v, Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Rules{}, perr.Wrapf(err, perr.ErrorCodeConfig, "read rules file %s", path)
		}
	}

	var r Rules
	if err := v.Unmarshal(&r); err != nil {
		return Rules{}, perr.Wrap(err, perr.ErrorCodeConfig, "decode rules")
	}
	if !strings.HasSuffix(r.LogsBaseURL, "/") {
		r.LogsBaseURL += "/"
	}
	if err := validate.Struct(r); err != nil {
		return Rules{}, perr.WithOp(err, "rules.load")
	}
	return r, nil
}

func setDefaults(v *viper.Viper, d Rules) {
	hosts := make([]map[string]any, len(d.SupportedHosts))
	for i, h := range d.SupportedHosts {
		hosts[i] = map[string]any{"host": h.Host, "depth": h.Depth}
	}
	v.SetDefault("supported_hosts", hosts)
	v.SetDefault("official_owners", d.OfficialOwners)
	v.SetDefault("partner_owners", d.PartnerOwners)
	v.SetDefault("recommended_owners", d.RecommendedOwners)
	v.SetDefault("logs_base_url", d.LogsBaseURL)
}
